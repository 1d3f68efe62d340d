package gcs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
)

const (
	testBucket = "test-bucket"
	testObject = "catalog/products.json"
)

// newTestStore creates a Store pointed at a test server.
func newTestStore(t *testing.T, handler http.Handler) *Store {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := storage.NewClient(context.Background(), option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store, err := New(client, Config{Bucket: testBucket, Object: testObject})
	require.NoError(t, err)
	return store
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Config{Bucket: testBucket})
	require.Error(t, err)

	client, err := storage.NewClient(context.Background(), option.WithoutAuthentication())
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	_, err = New(client, Config{})
	require.Error(t, err)

	store, err := New(client, Config{Bucket: testBucket})
	require.NoError(t, err)
	assert.Equal(t, "gs://test-bucket/scraped_data.json", store.Location())
}

func TestSaveUploadsDocument(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, fmt.Sprintf("/upload/storage/v1/b/%s/o", testBucket))
		assert.Equal(t, testObject, r.URL.Query().Get("name"))
		assert.Equal(t, "multipart", r.URL.Query().Get("uploadType"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Contains(t, string(body), `"product_title": "Scaler"`)
		assert.Contains(t, string(body), "application/json")

		fmt.Fprintln(w, `{"name":"`+testObject+`","bucket":"`+testBucket+`"}`)
	})

	store := newTestStore(t, handler)
	err := store.Save(context.Background(), []catalog.Product{{Title: "Scaler", Price: 450, ImageURL: "https://x/s.jpg"}})
	require.NoError(t, err)
}

func TestSaveError(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	store := newTestStore(t, handler)
	err := store.Save(context.Background(), nil)
	require.Error(t, err)
}

func TestLoadReadsDocument(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/"+testBucket+"/"+testObject, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"product_title":"Scaler","product_price":450,"path_to_image":"https://x/s.jpg"}]`)
	})

	store := newTestStore(t, handler)
	products, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []catalog.Product{{Title: "Scaler", Price: 450, ImageURL: "https://x/s.jpg"}}, products)
}

func TestLoadMissingObjectIsEmpty(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	store := newTestStore(t, handler)
	products, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}
