package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProductJSONFieldNames(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(Product{Title: "Loupe", Price: 2500.5, ImageURL: "https://cdn.example.com/l.jpg"})
	require.NoError(t, err)
	require.JSONEq(t, `{"product_title":"Loupe","product_price":2500.5,"path_to_image":"https://cdn.example.com/l.jpg"}`, string(raw))
}
