package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidStoreURL(t *testing.T) {
	valid := []string{
		"https://nordicthreads.com",
		"http://shop.example.co.uk/collections",
		"https://store.myshopify.com/",
	}
	for _, u := range valid {
		assert.True(t, IsValidStoreURL(u), "url %q", u)
	}

	invalid := []string{
		"",
		"notaurl",
		"ftp://store.com",
		"https://localhost",
		"javascript:alert(1)",
	}
	for _, u := range invalid {
		assert.False(t, IsValidStoreURL(u), "url %q", u)
	}
}
