package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/launchmap/backend/internal/estimator"
	"github.com/launchmap/backend/pkg/logger"
	"github.com/launchmap/backend/pkg/retry"
)

// ErrNotShopify marks a reachable page that carries no Shopify fingerprint.
var ErrNotShopify = errors.New("target is not a shopify storefront")

type Scraper struct {
	httpClient  *http.Client
	userAgent   string
	retryConfig retry.Config
}

func New(timeout time.Duration, userAgent string) *Scraper {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}

	return &Scraper{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		retryConfig: retry.Config{
			MaxAttempts:  2,
			InitialDelay: 300 * time.Millisecond,
			Logger:       logger.GetLogger(),
		},
	}
}

// knownApps maps script/asset fingerprints to app identifiers fed into
// the conversion-rate tiers.
var knownApps = map[string]string{
	"klaviyo":    "klaviyo",
	"mailchimp":  "mailchimp",
	"omnisend":   "omnisend",
	"privy":      "privy",
	"pushowl":    "pushowl",
	"postscript": "postscript",
	"judge.me":   "judgeme",
	"judgeme":    "judgeme",
	"loox":       "loox",
	"yotpo":      "yotpo",
	"stamped":    "stamped",
	"okendo":     "okendo",
	"gorgias":    "gorgias",
	"recharge":   "recharge",
	"aftership":  "aftership",
}

var themePattern = regexp.MustCompile(`Shopify\.theme\s*=\s*(\{.*?\})`)

// ScrapeStore fetches the storefront home page and extracts the raw facts
// the quality scorer consumes. The caller decides what a failure means;
// this function never fabricates data.
func (s *Scraper) ScrapeStore(ctx context.Context, storeURL string) (*estimator.StoreFacts, error) {
	logger.Info("Scraping storefront", zap.String("url", storeURL))

	body, err := s.fetch(ctx, storeURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch storefront: %w", err)
	}

	if !looksLikeShopify(body) {
		return nil, ErrNotShopify
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse storefront HTML: %w", err)
	}

	facts := &estimator.StoreFacts{
		StoreName:  s.extractStoreName(doc),
		Theme:      s.extractTheme(body),
		Apps:       s.detectApps(doc),
		Products:   s.extractProducts(doc),
		Navigation: s.extractNavigation(doc),
		Colors:     s.extractColors(doc, body),
		Fonts:      s.extractFonts(body),
	}

	logger.Info("Storefront scraped",
		zap.String("store", facts.StoreName),
		zap.String("theme", facts.Theme.Name),
		zap.Int("apps", len(facts.Apps)),
		zap.Int("products", len(facts.Products)),
		zap.Int("nav_links", len(facts.Navigation)),
	)

	return facts, nil
}

// FetchStorefrontProducts probes the public products API. The boolean is an
// availability flag: false means the probe failed and the caller should fall
// back to scraped price text.
func (s *Scraper) FetchStorefrontProducts(ctx context.Context, storeURL string) ([]estimator.StorefrontProduct, bool) {
	endpoint := strings.TrimRight(storeURL, "/") + "/products.json?limit=50"

	body, err := s.fetch(ctx, endpoint)
	if err != nil {
		logger.Debug("Storefront products API unavailable", zap.String("url", storeURL), zap.Error(err))
		return nil, false
	}

	var payload struct {
		Products []struct {
			Title    string `json:"title"`
			Variants []struct {
				Price string `json:"price"`
			} `json:"variants"`
		} `json:"products"`
	}

	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		logger.Debug("Storefront products payload not parseable", zap.Error(err))
		return nil, false
	}

	if len(payload.Products) == 0 {
		return nil, false
	}

	products := make([]estimator.StorefrontProduct, 0, len(payload.Products))
	for _, p := range payload.Products {
		product := estimator.StorefrontProduct{Title: p.Title}
		if len(p.Variants) > 0 {
			if v, ok := estimator.ParsePrice(p.Variants[0].Price); ok {
				price := v
				product.Price = &price
			}
		}
		products = append(products, product)
	}

	logger.Info("Storefront products fetched", zap.Int("count", len(products)))

	return products, true
}

// DetectCountry guesses the store market from the currency symbols present
// in the scraped prices. Defaults to US.
func DetectCountry(facts *estimator.StoreFacts) string {
	if facts == nil {
		return "US"
	}
	for _, p := range facts.Products {
		switch {
		case strings.Contains(p.PriceRaw, "€"):
			return "FR"
		case strings.Contains(p.PriceRaw, "£"):
			return "UK"
		case strings.Contains(p.PriceRaw, "kr"):
			return "SE"
		case strings.Contains(p.PriceRaw, "C$"):
			return "CA"
		}
	}
	return "US"
}

func (s *Scraper) fetch(ctx context.Context, target string) (string, error) {
	if _, err := url.ParseRequestURI(target); err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}

	var body string

	err := retry.Do(ctx, s.retryConfig, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", s.userAgent)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
		if err != nil {
			return fmt.Errorf("failed to read body: %w", err)
		}

		body = string(data)
		return nil
	})

	return body, err
}

func looksLikeShopify(body string) bool {
	return strings.Contains(body, "cdn.shopify.com") ||
		strings.Contains(body, "Shopify.theme") ||
		strings.Contains(body, "shopify-section")
}

func (s *Scraper) extractStoreName(doc *goquery.Document) string {
	if name, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok && name != "" {
		return strings.TrimSpace(name)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	// Strip the usual "Home – Store" / "Store | Tagline" decorations.
	for _, sep := range []string{" – ", " - ", " | "} {
		if idx := strings.Index(title, sep); idx > 0 {
			title = title[:idx]
			break
		}
	}
	return strings.TrimSpace(title)
}

func (s *Scraper) extractTheme(body string) estimator.ThemeInfo {
	match := themePattern.FindStringSubmatch(body)
	if len(match) < 2 {
		return estimator.ThemeInfo{}
	}

	var theme struct {
		Name    string `json:"name"`
		Version string `json:"theme_version"`
	}
	if err := json.Unmarshal([]byte(match[1]), &theme); err != nil {
		return estimator.ThemeInfo{}
	}

	return estimator.ThemeInfo{Name: theme.Name, Version: theme.Version}
}

func (s *Scraper) detectApps(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var apps []string

	doc.Find("script[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		lower := strings.ToLower(src)
		for fingerprint, app := range knownApps {
			if strings.Contains(lower, fingerprint) && !seen[app] {
				seen[app] = true
				apps = append(apps, app)
			}
		}
	})

	return apps
}

func (s *Scraper) extractProducts(doc *goquery.Document) []estimator.ScrapedProduct {
	var products []estimator.ScrapedProduct

	doc.Find(".product-card, .grid__item, .card--product, [data-product-id]").Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find(".product-card__title, .card__heading, h3, h2").First().Text())
		price := strings.TrimSpace(sel.Find(".price, .price-item, .product-card__price, .money").First().Text())

		if title == "" && price == "" {
			return
		}

		products = append(products, estimator.ScrapedProduct{
			Title:    title,
			PriceRaw: price,
		})
	})

	return products
}

func (s *Scraper) extractNavigation(doc *goquery.Document) []estimator.NavLink {
	var links []estimator.NavLink
	seen := make(map[string]bool)

	doc.Find("nav a, .header__menu a, .site-nav a").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		label := strings.TrimSpace(sel.Text())
		if href == "" || label == "" || seen[href] {
			return
		}
		seen[href] = true
		links = append(links, estimator.NavLink{Label: label, Href: href})
	})

	return links
}

var cssVarPattern = regexp.MustCompile(`--color-(?:primary|base|accent|foreground)[^:]*:\s*([^;]+);`)

func (s *Scraper) extractColors(doc *goquery.Document, body string) estimator.Palette {
	var palette estimator.Palette

	if c, ok := doc.Find(`meta[name="theme-color"]`).Attr("content"); ok {
		palette.Primary = strings.TrimSpace(c)
	}

	matches := cssVarPattern.FindAllStringSubmatch(body, 3)
	for i, m := range matches {
		value := strings.TrimSpace(m[1])
		switch i {
		case 0:
			if palette.Primary == "" {
				palette.Primary = value
			} else {
				palette.Secondary = value
			}
		case 1:
			if palette.Secondary == "" {
				palette.Secondary = value
			} else {
				palette.Accent = value
			}
		case 2:
			if palette.Accent == "" {
				palette.Accent = value
			}
		}
	}

	return palette
}

var fontPattern = regexp.MustCompile(`--font-(heading|body)-family:\s*([^;,]+)[;,]`)

func (s *Scraper) extractFonts(body string) estimator.FontSet {
	var fonts estimator.FontSet

	for _, m := range fontPattern.FindAllStringSubmatch(body, -1) {
		value := strings.Trim(strings.TrimSpace(m[2]), `"'`)
		switch m[1] {
		case "heading":
			if fonts.Heading == "" {
				fonts.Heading = value
			}
		case "body":
			if fonts.Body == "" {
				fonts.Body = value
			}
		}
	}

	return fonts
}
