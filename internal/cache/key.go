package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

const keyPrefix = "catalog-scraper:page:"

// Key derives the cache key for a page URL.
func Key(pageURL string) string {
	sum := sha256.Sum256([]byte(pageURL))
	return keyPrefix + hex.EncodeToString(sum[:])
}
