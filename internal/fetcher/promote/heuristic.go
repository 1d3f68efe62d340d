package promote

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
)

// DefaultBodyLengthThreshold is the body size below which a script-heavy page
// is treated as a client-rendered shell.
const DefaultBodyLengthThreshold = 2048

// Heuristic implements a handful of rule-based promotions.
type Heuristic struct {
	BodyLengthThreshold int
}

// NewHeuristic creates a new detector.
func NewHeuristic(threshold int) *Heuristic {
	if threshold <= 0 {
		threshold = DefaultBodyLengthThreshold
	}
	return &Heuristic{BodyLengthThreshold: threshold}
}

var spaMarkers = [][]byte{
	[]byte("__next"),
	[]byte("id=\"root\""),
	[]byte("id=\"app\""),
	[]byte("data-reactroot"),
}

// ShouldPromote reports whether a probe page needs a headless render.
func (h *Heuristic) ShouldPromote(page catalog.Page) bool {
	if page.StatusCode != http.StatusOK {
		return false
	}
	body := page.Body
	if len(body) == 0 {
		return true
	}
	if len(body) < h.BodyLengthThreshold && scriptDensityHigh(body) {
		return true
	}
	for _, marker := range spaMarkers {
		if bytes.Contains(body, marker) {
			return true
		}
	}
	return false
}

func scriptDensityHigh(body []byte) bool {
	lower := strings.ToLower(string(body))
	total := len(lower)
	if total == 0 {
		return false
	}

	const (
		openTag  = "<script"
		closeTag = "</script>"
	)
	covered := 0
	pos := 0
	for {
		rel := strings.Index(lower[pos:], openTag)
		if rel == -1 {
			break
		}
		start := pos + rel

		tagEnd := strings.IndexByte(lower[start:], '>')
		if tagEnd == -1 {
			// Unterminated tag swallows the rest of the document.
			covered += total - start
			break
		}
		contentStart := start + tagEnd + 1

		next := total
		if end := strings.Index(lower[contentStart:], closeTag); end != -1 {
			next = contentStart + end + len(closeTag)
		}
		covered += next - start
		pos = next
	}
	return covered*100/total >= 25
}
