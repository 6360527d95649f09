package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchmap/backend/internal/estimator"
)

const storefrontHTML = `<!doctype html>
<html>
<head>
<title>Nordwear – Premium Scandinavian Apparel</title>
<meta property="og:site_name" content="Nordwear">
<meta name="theme-color" content="#1a1a2e">
<script src="https://cdn.shopify.com/s/files/1/0001/assets/theme.js"></script>
<script src="https://static.klaviyo.com/onsite/js/klaviyo.js"></script>
<script src="https://cdn.judge.me/widget.js"></script>
<script>Shopify.theme = {"name":"Dawn","theme_version":"12.0.0"};</script>
<style>
:root {
  --color-primary: #1a1a2e;
  --color-accent: #e94560;
  --font-heading-family: "Archivo Black", sans-serif;
  --font-body-family: Inter, sans-serif;
}
</style>
</head>
<body>
<nav>
  <a href="/collections/hoodies">Hoodies</a>
  <a href="/collections/tees">Tees</a>
  <a href="/pages/about">About</a>
  <a href="/collections/hoodies">Hoodies again</a>
</nav>
<div class="shopify-section">
  <div class="product-card">
    <h3 class="product-card__title">Fjord Hoodie</h3>
    <span class="price">59,99€</span>
  </div>
  <div class="product-card">
    <h3 class="product-card__title">Drift Tee</h3>
    <span class="price">24,99€</span>
  </div>
</div>
</body>
</html>`

func docFromString(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestLooksLikeShopify(t *testing.T) {
	assert.True(t, looksLikeShopify(storefrontHTML))
	assert.True(t, looksLikeShopify(`<script>Shopify.theme = {"name":"Dawn"}</script>`))
	assert.False(t, looksLikeShopify(`<html><body>just a blog</body></html>`))
}

func TestExtractStoreName(t *testing.T) {
	s := New(0, "")

	doc := docFromString(t, storefrontHTML)
	assert.Equal(t, "Nordwear", s.extractStoreName(doc))

	// No og:site_name falls back to the title, stripped of decorations.
	doc = docFromString(t, `<html><head><title>Nordwear – Home</title></head></html>`)
	assert.Equal(t, "Nordwear", s.extractStoreName(doc))

	doc = docFromString(t, `<html><head><title>Nordwear | Premium Apparel</title></head></html>`)
	assert.Equal(t, "Nordwear", s.extractStoreName(doc))
}

func TestExtractTheme(t *testing.T) {
	s := New(0, "")

	theme := s.extractTheme(storefrontHTML)
	assert.Equal(t, "Dawn", theme.Name)
	assert.Equal(t, "12.0.0", theme.Version)

	assert.Equal(t, estimator.ThemeInfo{}, s.extractTheme("<html></html>"))
	assert.Equal(t, estimator.ThemeInfo{}, s.extractTheme(`Shopify.theme = {broken`))
}

func TestDetectApps(t *testing.T) {
	s := New(0, "")
	doc := docFromString(t, storefrontHTML)

	apps := s.detectApps(doc)
	assert.Contains(t, apps, "klaviyo")
	assert.Contains(t, apps, "judgeme")
	assert.NotContains(t, apps, "yotpo")
}

func TestExtractProducts(t *testing.T) {
	s := New(0, "")
	doc := docFromString(t, storefrontHTML)

	products := s.extractProducts(doc)
	require.Len(t, products, 2)
	assert.Equal(t, "Fjord Hoodie", products[0].Title)
	assert.Equal(t, "59,99€", products[0].PriceRaw)
}

func TestExtractNavigationDeduplicates(t *testing.T) {
	s := New(0, "")
	doc := docFromString(t, storefrontHTML)

	links := s.extractNavigation(doc)
	require.Len(t, links, 3)
	assert.Equal(t, "Hoodies", links[0].Label)
	assert.Equal(t, "/collections/hoodies", links[0].Href)
}

func TestExtractColorsAndFonts(t *testing.T) {
	s := New(0, "")
	doc := docFromString(t, storefrontHTML)

	colors := s.extractColors(doc, storefrontHTML)
	assert.Equal(t, "#1a1a2e", colors.Primary)
	assert.True(t, colors.HasAny())

	fonts := s.extractFonts(storefrontHTML)
	assert.Equal(t, "Archivo Black", fonts.Heading)
	assert.Equal(t, "Inter", fonts.Body)
	assert.True(t, fonts.HasAny())
}

func TestDetectCountry(t *testing.T) {
	withPrice := func(raw string) *estimator.StoreFacts {
		return &estimator.StoreFacts{
			Products: []estimator.ScrapedProduct{{Title: "x", PriceRaw: raw}},
		}
	}

	assert.Equal(t, "FR", DetectCountry(withPrice("59,99€")))
	assert.Equal(t, "UK", DetectCountry(withPrice("£45.00")))
	assert.Equal(t, "SE", DetectCountry(withPrice("499 kr")))
	assert.Equal(t, "CA", DetectCountry(withPrice("C$80.00")))
	assert.Equal(t, "US", DetectCountry(withPrice("$39.99")))
	assert.Equal(t, "US", DetectCountry(nil))
}
