// Package gcs provides a product store backed by one Google Cloud Storage object.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
	appstorage "github.com/JakeFAU/catalog-scraper/internal/storage"
)

// DefaultObject is the object name used when none is configured.
const DefaultObject = "scraped_data.json"

// Config captures the parameters required to locate the document in GCS.
type Config struct {
	Bucket string
	Object string
}

// Store reads and writes the product document as a single object.
type Store struct {
	client *storage.Client
	bucket string
	object string
}

// New creates a GCS-backed product store.
func New(client *storage.Client, cfg Config) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	object := strings.TrimSpace(cfg.Object)
	if object == "" {
		object = DefaultObject
	}
	return &Store{
		client: client,
		bucket: cfg.Bucket,
		object: object,
	}, nil
}

// Location returns the gs:// URI of the document.
func (s *Store) Location() string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, s.object)
}

// Save uploads the encoded document, replacing the previous object.
func (s *Store) Save(ctx context.Context, products []catalog.Product) error {
	data, err := appstorage.Encode(products)
	if err != nil {
		return err
	}
	writer := s.client.Bucket(s.bucket).Object(s.object).NewWriter(ctx)
	writer.ContentType = appstorage.ContentType
	if _, err := writer.Write(data); err != nil {
		closeErr := writer.Close()
		if closeErr != nil {
			return fmt.Errorf("write object: %w (close writer: %v)", err, closeErr)
		}
		return fmt.Errorf("write object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	return nil
}

// Load downloads the document. A missing object yields an empty list.
func (s *Store) Load(ctx context.Context) ([]catalog.Product, error) {
	reader, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return []catalog.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open object: %w", err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return appstorage.Decode(data)
}
