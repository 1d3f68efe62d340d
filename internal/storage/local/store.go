// Package local implements a product store backed by a JSON file on the local filesystem.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
	"github.com/JakeFAU/catalog-scraper/internal/storage"
)

// DefaultPath is used when no path is configured.
const DefaultPath = "scraped_data.json"

// Config captures the parameters for the local file store.
type Config struct {
	// Path is the JSON document location. Parent directories are created on demand.
	Path string `mapstructure:"path" yaml:"path"`
}

// Store persists the product document to one file. Saves are serialized and
// written through a temp file plus rename so readers never see a partial document.
type Store struct {
	mu   sync.Mutex
	path string
}

// New creates a local file store.
func New(cfg Config) (*Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = DefaultPath
	}
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if mkErr := os.MkdirAll(dir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("failed to create directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to stat directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return &Store{path: path}, nil
}

// Location returns a file:// URI for the document.
func (s *Store) Location() string {
	abs, err := filepath.Abs(s.path)
	if err != nil {
		abs = s.path
	}
	return "file://" + abs
}

// Save overwrites the document with products.
func (s *Store) Save(_ context.Context, products []catalog.Product) error {
	data, err := storage.Encode(products)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// Load reads the document back. A missing file yields an empty list.
func (s *Store) Load(_ context.Context) ([]catalog.Product, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []catalog.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return storage.Decode(data)
}
