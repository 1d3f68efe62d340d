// Package memory contains an in-memory publisher for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
)

// Publisher stores published events for inspection.
type Publisher struct {
	mu     sync.RWMutex
	events []catalog.ScrapeCompleted
}

// New returns a memory Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish records the event and returns a pseudo ID.
func (p *Publisher) Publish(_ context.Context, event catalog.ScrapeCompleted) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return fmt.Sprintf("memory-%d", len(p.events)), nil
}

// Events returns the recorded events.
func (p *Publisher) Events() []catalog.ScrapeCompleted {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]catalog.ScrapeCompleted, len(p.events))
	copy(out, p.events)
	return out
}
