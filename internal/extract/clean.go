package extract

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// LazyImageAttr carries the real image URL on lazily loaded thumbnails.
const LazyImageAttr = "data-lazy-src"

// Price is a cleaned price. Valid is false when the raw text could not be
// parsed, which keeps "unparsable" distinct from a genuine zero.
type Price struct {
	Value float64
	Valid bool
}

// OrZero returns the parsed value, or 0.0 when the price is not valid.
func (p Price) OrZero() float64 {
	if !p.Valid {
		return 0
	}
	return p.Value
}

// CleanPrice converts a raw price element into a Price.
func CleanPrice(raw RawField) Price {
	if !raw.IsPresent() {
		return Price{}
	}
	return ParsePrice(raw.Text())
}

// ParsePrice strips currency symbols, whitespace, and thousands separators
// from text and parses the remainder as a decimal number.
func ParsePrice(text string) Price {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.Is(unicode.Sc, r) || r == ',' {
			return -1
		}
		return r
	}, text)
	if cleaned == "" {
		return Price{}
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Price{}
	}
	return Price{Value: d.InexactFloat64(), Valid: true}
}

// CleanTitle returns the trimmed text of a raw title element, or "" when absent.
func CleanTitle(raw RawField) string {
	if !raw.IsPresent() {
		return ""
	}
	return TrimTitle(raw.Text())
}

// TrimTitle trims surrounding whitespace. It is idempotent.
func TrimTitle(text string) string {
	return strings.TrimSpace(text)
}

// CleanImageURL reads the lazy-load source of a raw image element. The second
// return value is false when the element or the attribute is missing.
func CleanImageURL(raw RawField) (string, bool) {
	if !raw.IsPresent() {
		return "", false
	}
	src, ok := raw.Attr(LazyImageAttr)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(src), true
}

// Clean converts every field of a raw product.
func Clean(raw RawProduct) Cleaned {
	url, _ := CleanImageURL(raw.Image)
	return Cleaned{
		Title:    CleanTitle(raw.Title),
		Price:    CleanPrice(raw.Price),
		ImageURL: url,
	}
}
