// Package catalog defines the product records and collaborator interfaces
// shared by the fetch, extract, scrape, and storage subsystems.
package catalog

import "time"

// Product is one validated listing scraped from a shop page. A Product is only
// built once its title, price, and image URL have passed both validation stages.
type Product struct {
	Title    string  `json:"product_title"`
	Price    float64 `json:"product_price"`
	ImageURL string  `json:"path_to_image"`
}

// FetchRequest captures everything needed to fetch one listing page.
type FetchRequest struct {
	URL string
	// Proxy is applied to both http and https traffic when non-empty.
	Proxy string
}

// Page is a successfully fetched listing page.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
	FromCache  bool
}

// ScrapeCompleted is published after a scrape run has been persisted.
type ScrapeCompleted struct {
	RunID      string    `json:"run_id"`
	Products   int       `json:"products"`
	Pages      int       `json:"pages"`
	BaseURL    string    `json:"base_url"`
	Location   string    `json:"location"`
	FinishedAt time.Time `json:"finished_at"`
}
