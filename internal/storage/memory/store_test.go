package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := New()

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	products := []catalog.Product{{Title: "Bur", Price: 75, ImageURL: "https://x/bur.jpg"}}
	require.NoError(t, store.Save(ctx, products))
	require.NoError(t, store.Save(ctx, products))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, products, loaded)
	assert.Equal(t, 2, store.Saves())
	assert.Equal(t, "memory://products", store.Location())
}

func TestStoreIsolatesCallerSlices(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := New()
	products := []catalog.Product{{Title: "Bur", Price: 75, ImageURL: "https://x/bur.jpg"}}
	require.NoError(t, store.Save(ctx, products))

	products[0].Title = "changed"
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bur", loaded[0].Title)
}
