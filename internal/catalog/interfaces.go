package catalog

import (
	"context"
	"time"
)

// Fetcher fetches a listing page and returns its body.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (Page, error)
}

// ProductStore persists the full product list of a run and loads it back.
// Save replaces any previously stored document.
type ProductStore interface {
	Save(ctx context.Context, products []Product) error
	Load(ctx context.Context) ([]Product, error)
	// Location describes where the document lives (path, URI, or table).
	Location() string
}

// Publisher pushes completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, event ScrapeCompleted) (string, error)
}

// PageCache stores raw page bodies keyed by URL.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}
