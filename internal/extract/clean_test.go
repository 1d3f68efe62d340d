package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldFrom(t *testing.T, fragment, selector string) RawField {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	require.NoError(t, err)
	return Locate(doc.Selection, selector)
}

func TestParsePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		want  float64
		valid bool
	}{
		{name: "plain", in: "1299.00", want: 1299, valid: true},
		{name: "rupee glyph", in: "₹850.50", want: 850.5, valid: true},
		{name: "glyph and spaces", in: " ₹ 1 299.00 ", want: 1299, valid: true},
		{name: "thousands separator", in: "₹12,499.00", want: 12499, valid: true},
		{name: "non-breaking space", in: "₹ 42", want: 42, valid: true},
		{name: "dollar", in: "$3.75", want: 3.75, valid: true},
		{name: "zero", in: "₹0.00", want: 0, valid: true},
		{name: "glyph only", in: "₹ ", valid: false},
		{name: "empty", in: "", valid: false},
		{name: "not a number", in: "N/A", valid: false},
		{name: "trailing text", in: "₹12 onwards", valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParsePrice(tt.in)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.InDelta(t, tt.want, got.Value, 1e-9)
			} else {
				assert.Zero(t, got.OrZero())
			}
		})
	}
}

func TestCleanPriceReadsNestedText(t *testing.T) {
	t.Parallel()

	raw := fieldFrom(t, `<bdi><span class="woocommerce-Price-currencySymbol">₹</span>1,050.00</bdi>`, "bdi")
	got := CleanPrice(raw)
	require.True(t, got.Valid)
	assert.InDelta(t, 1050.0, got.Value, 1e-9)
}

func TestCleanPriceAbsent(t *testing.T) {
	t.Parallel()

	got := CleanPrice(Absent())
	assert.False(t, got.Valid)
	assert.Zero(t, got.OrZero())
}

func TestCleanTitle(t *testing.T) {
	t.Parallel()

	raw := fieldFrom(t, `<h2><a>  Dental Mirror Handle #5  </a></h2>`, "a")
	assert.Equal(t, "Dental Mirror Handle #5", CleanTitle(raw))
	assert.Equal(t, "", CleanTitle(Absent()))

	raw = fieldFrom(t, "<h2><a>\n\t Composite Kit\n</a></h2>", "a")
	assert.Equal(t, "Composite Kit", CleanTitle(raw))
}

func TestTrimTitleIdempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"  Gloves (Box of 100)  ", "Gloves", "\tA B\n", "", "   "} {
		once := TrimTitle(in)
		assert.Equal(t, once, TrimTitle(once), "input %q", in)
	}
}

func TestCleanImageURL(t *testing.T) {
	t.Parallel()

	raw := fieldFrom(t, `<img src="placeholder.svg" data-lazy-src="https://cdn.example.com/a.jpg">`, "img")
	url, ok := CleanImageURL(raw)
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/a.jpg", url)

	raw = fieldFrom(t, `<img src="https://cdn.example.com/eager.jpg">`, "img")
	url, ok = CleanImageURL(raw)
	assert.False(t, ok)
	assert.Empty(t, url)

	url, ok = CleanImageURL(Absent())
	assert.False(t, ok)
	assert.Empty(t, url)
}

func TestPresentTreatsEmptySelectionAsAbsent(t *testing.T) {
	t.Parallel()

	raw := fieldFrom(t, `<div></div>`, ".missing")
	assert.False(t, raw.IsPresent())
	assert.False(t, Present(nil).IsPresent())
	assert.False(t, Locate(nil, "a").IsPresent())
}
