package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Field names one of the three required product fields.
type Field string

// Required product fields, in reporting order.
const (
	FieldTitle Field = "Title"
	FieldPrice Field = "Price"
	FieldImage Field = "Image"
)

// RawField is a located HTML element for one product field, or its absence.
// The zero value is Absent.
type RawField struct {
	sel *goquery.Selection
}

// Absent returns a RawField with no element behind it.
func Absent() RawField {
	return RawField{}
}

// Present wraps a selection. An empty selection is treated as Absent.
func Present(sel *goquery.Selection) RawField {
	if sel == nil || sel.Length() == 0 {
		return Absent()
	}
	return RawField{sel: sel.First()}
}

// Locate finds the first element under block matching selector.
func Locate(block *goquery.Selection, selector string) RawField {
	if block == nil {
		return Absent()
	}
	return Present(block.Find(selector))
}

// IsPresent reports whether an element was located.
func (f RawField) IsPresent() bool {
	return f.sel != nil
}

// Text returns the combined text of the element and its descendants.
func (f RawField) Text() string {
	if f.sel == nil {
		return ""
	}
	return f.sel.Text()
}

// Attr returns the named attribute of the element.
func (f RawField) Attr(name string) (string, bool) {
	if f.sel == nil {
		return "", false
	}
	return f.sel.Attr(name)
}

// RawProduct groups the located elements of one product card.
type RawProduct struct {
	Title RawField
	Price RawField
	Image RawField
}

// Cleaned holds the converted values of one product card.
type Cleaned struct {
	Title    string
	Price    Price
	ImageURL string
}

func joinFields(fields []Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
