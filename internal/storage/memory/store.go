// Package memory keeps the product document in-memory for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
	"github.com/JakeFAU/catalog-scraper/internal/storage"
)

// Store holds the encoded document so readers see exactly what a file-backed
// store would return.
type Store struct {
	mu    sync.RWMutex
	data  []byte
	saves int
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{}
}

// Location returns a pseudo URI.
func (s *Store) Location() string {
	return "memory://products"
}

// Save replaces the stored document.
func (s *Store) Save(_ context.Context, products []catalog.Product) error {
	data, err := storage.Encode(products)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.saves++
	return nil
}

// Load decodes the stored document; nothing saved yet yields an empty list.
func (s *Store) Load(_ context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()
	return storage.Decode(data)
}

// Saves reports how many times Save succeeded.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
