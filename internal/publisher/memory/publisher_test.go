package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
)

func TestPublisherStoresEvents(t *testing.T) {
	t.Parallel()

	pub := New()
	id1, err := pub.Publish(context.Background(), catalog.ScrapeCompleted{RunID: "a", Products: 3})
	require.NoError(t, err)
	assert.Equal(t, "memory-1", id1)
	id2, err := pub.Publish(context.Background(), catalog.ScrapeCompleted{RunID: "b"})
	require.NoError(t, err)
	assert.Equal(t, "memory-2", id2)

	events := pub.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].RunID)
	assert.Equal(t, 3, events[0].Products)

	events[0].RunID = "modified"
	assert.Equal(t, "a", pub.Events()[0].RunID, "Events returns a copy")
}
