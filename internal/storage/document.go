// Package storage holds the product document codec shared by the document
// stores. Implementations live in sub-packages: local, gcs, memory, postgres.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
)

// ContentType is the media type of an encoded product document.
const ContentType = "application/json; charset=utf-8"

// Encode renders products as a 4-space indented JSON array. Non-ASCII text and
// HTML characters are written as-is. A nil slice encodes as [].
func Encode(products []catalog.Product) ([]byte, error) {
	if products == nil {
		products = []catalog.Product{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(products); err != nil {
		return nil, fmt.Errorf("encode products: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses a product document. Empty input decodes as no products.
func Decode(data []byte) ([]catalog.Product, error) {
	products := []catalog.Product{}
	if len(bytes.TrimSpace(data)) == 0 {
		return products, nil
	}
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	if products == nil {
		products = []catalog.Product{}
	}
	return products, nil
}
