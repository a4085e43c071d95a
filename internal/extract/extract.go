package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// NotAvailable replaces a field whose element is missing from a product wrapper.
const NotAvailable = "N/A"

// Listing is one product found on a promotions page. Prices are normalized
// decimal text ("399.00") or NotAvailable; they are not parsed here.
type Listing struct {
	Product       string
	OriginalPrice string
	DiscountPrice string
}

// Selectors are the CSS selectors that locate a product wrapper and, inside
// it, the title, the struck-through original price and the current price.
type Selectors struct {
	Wrapper       string `yaml:"wrapper" json:"wrapper" toml:"wrapper"`
	Title         string `yaml:"title" json:"title" toml:"title"`
	OriginalPrice string `yaml:"originalPrice" json:"originalPrice" toml:"originalPrice"`
	Price         string `yaml:"price" json:"price" toml:"price"`
}

// DefaultSelectors match the MediaMarkt campaign listing markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Wrapper:       "div.product-wrapper",
		Title:         "h2.product-title",
		OriginalPrice: "span.strike-through",
		Price:         "span.price",
	}
}

// withDefaults fills empty selectors from DefaultSelectors.
func (s Selectors) withDefaults() Selectors {
	d := DefaultSelectors()
	if strings.TrimSpace(s.Wrapper) == "" {
		s.Wrapper = d.Wrapper
	}
	if strings.TrimSpace(s.Title) == "" {
		s.Title = d.Title
	}
	if strings.TrimSpace(s.OriginalPrice) == "" {
		s.OriginalPrice = d.OriginalPrice
	}
	if strings.TrimSpace(s.Price) == "" {
		s.Price = d.Price
	}
	return s
}

// Validate reports the first selector that does not compile.
func (s Selectors) Validate() error {
	s = s.withDefaults()
	for _, f := range []struct{ name, sel string }{
		{"wrapper", s.Wrapper},
		{"title", s.Title},
		{"originalPrice", s.OriginalPrice},
		{"price", s.Price},
	} {
		if _, err := cascadia.Compile(f.sel); err != nil {
			return fmt.Errorf("selector %s %q: %w", f.name, f.sel, err)
		}
	}
	return nil
}

// Extractor pulls listings out of a promotions page.
type Extractor struct {
	Selectors Selectors
}

// Extract parses input and returns one Listing per wrapper in document
// order. Missing fields become NotAvailable; a page without wrappers yields
// an empty slice. Only a failure to parse the document is an error.
func (e Extractor) Extract(input string) ([]Listing, error) {
	node, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	sel := e.Selectors.withDefaults()

	listings := make([]Listing, 0)
	goquery.NewDocumentFromNode(node).Find(sel.Wrapper).Each(func(_ int, wrapper *goquery.Selection) {
		listings = append(listings, Listing{
			Product:       field(wrapper, sel.Title, CleanText),
			OriginalPrice: field(wrapper, sel.OriginalPrice, NormalizePrice),
			DiscountPrice: field(wrapper, sel.Price, NormalizePrice),
		})
	})
	return listings, nil
}

// FromHTML extracts listings with the default selectors. A document that
// cannot be parsed yields no listings.
func FromHTML(input string) []Listing {
	listings, err := Extractor{}.Extract(input)
	if err != nil {
		return []Listing{}
	}
	return listings
}

// field returns the cleaned text of the first descendant matching selector,
// or NotAvailable when there is none.
func field(wrapper *goquery.Selection, selector string, clean func(string) string) string {
	found := wrapper.Find(selector).First()
	if found.Length() == 0 {
		return NotAvailable
	}
	return clean(found.Text())
}

// CleanText collapses whitespace runs (including non-breaking spaces) and
// applies NFC normalization so visually equal names compare equal.
func CleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// NormalizePrice turns shop price text into decimal text: the euro sign is
// dropped and a decimal comma becomes a period, "19,99 €" -> "19.99".
// Text that is already normalized is returned unchanged.
//
// Only a single comma is expected. Thousands separators are not understood:
// "1.234,56€" becomes "1.234.56", which no longer parses as a number.
func NormalizePrice(s string) string {
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, ",", ".")
	return CleanText(s)
}
