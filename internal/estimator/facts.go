package estimator

// StoreFacts holds the raw signals a storefront scrape produced. Every field
// is optional; a nil *StoreFacts means the scrape itself failed, which is a
// different state than a scrape that succeeded but found nothing.
type StoreFacts struct {
	StoreName  string
	Theme      ThemeInfo
	Apps       []string
	Products   []ScrapedProduct
	Navigation []NavLink
	Colors     Palette
	Fonts      FontSet
}

type ThemeInfo struct {
	Name    string
	Version string
}

// ScrapedProduct carries the raw, locale-formatted price text as it appeared
// in the page. Parsing happens in the estimator, not the scraper.
type ScrapedProduct struct {
	Title    string
	PriceRaw string
}

type NavLink struct {
	Label string
	Href  string
}

type Palette struct {
	Primary   string
	Secondary string
	Accent    string
}

type FontSet struct {
	Heading string
	Body    string
}

// StorefrontProduct is one entry from the public storefront products API.
// Price is nil when the API returned no usable price for the variant.
type StorefrontProduct struct {
	Title string
	Price *float64
}

func (p Palette) HasAny() bool {
	return p.Primary != "" || p.Secondary != "" || p.Accent != ""
}

func (f FontSet) HasAny() bool {
	return f.Heading != "" || f.Body != ""
}
