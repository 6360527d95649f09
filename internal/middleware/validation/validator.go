package validation

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	MaxURLLength        int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// Middleware rejects malformed bodies before they reach the handlers: bad
// content types, missing/overlong URLs on the spy routes. Deeper checks
// (Shopify fingerprint, quota) stay in the handlers where the context lives.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxURLLength == 0 {
		cfg.MaxURLLength = 2048
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodPost || c.Method() == fiber.MethodPut {
			contentType := c.Get("Content-Type")
			if contentType != "" && !contentTypeAllowed(contentType, cfg.AllowedContentTypes) {
				return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
					"error": "Unsupported content type",
				})
			}
		}

		if strings.Contains(c.Path(), "/spy/analyze") && (c.Method() == fiber.MethodPost || c.Method() == fiber.MethodPut) {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			rawURL, ok := req["url"].(string)
			if !ok || rawURL == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "URL is required and must be a string",
				})
			}

			if len(rawURL) > cfg.MaxURLLength {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "URL exceeds maximum length",
				})
			}

			if !IsValidStoreURL(rawURL) {
				cfg.Logger.Warn("Rejected store URL",
					zap.String("ip", c.IP()),
					zap.String("url", rawURL),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid store URL",
				})
			}
		}

		return c.Next()
	}
}

func contentTypeAllowed(contentType string, allowed []string) bool {
	for _, a := range allowed {
		if strings.Contains(contentType, a) {
			return true
		}
	}
	return false
}

// IsValidStoreURL accepts absolute http(s) URLs with a host that has at
// least one dot. Whether the host is actually a Shopify storefront is
// decided at scrape time.
func IsValidStoreURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	if u.Host == "" || !strings.Contains(u.Host, ".") {
		return false
	}

	return true
}
