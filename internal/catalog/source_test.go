package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/regimen/internal/config"
)

func TestFileSource(t *testing.T) {
	src := FileSource{Path: filepath.Join("testdata", "products.json")}

	products, err := src.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)
	require.Equal(t, "Micellar Water", products[2].Name)
}

func TestFileSource_ReadsOnEveryCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"products":[{"id":1}]}`), 0600))

	src := FileSource{Path: path}
	first, err := src.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	require.NoError(t, os.WriteFile(path, []byte(`{"products":[{"id":1},{"id":2}]}`), 0600))
	second, err := src.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 2)
}

func TestFileSource_Missing(t *testing.T) {
	src := FileSource{Path: filepath.Join(t.TempDir(), "nope.json")}
	_, err := src.Products(context.Background())
	require.Error(t, err)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[{"id":5,"name":"Sunscreen","category":"suncare"}]}`))
	}))
	defer srv.Close()

	products, err := HTTPSource{URL: srv.URL}.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, 5, products[0].ID)
}

func TestHTTPSource_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := HTTPSource{URL: srv.URL, Client: srv.Client()}.Products(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}

func TestEmbedded(t *testing.T) {
	products, err := Embedded().Products(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, products)

	seen := make(map[int]bool)
	for _, p := range products {
		require.False(t, seen[p.ID], "duplicate id %d in embedded catalog", p.ID)
		seen[p.ID] = true
		require.NotEmpty(t, p.Name)
		require.NotEmpty(t, p.Category)
	}
}

func TestStatic_ReturnsCopies(t *testing.T) {
	src := Static([]Product{{ID: 1, Name: "A"}})

	first, err := src.Products(context.Background())
	require.NoError(t, err)
	first[0].Name = "mutated"

	second, err := src.Products(context.Background())
	require.NoError(t, err)
	require.Equal(t, "A", second[0].Name)
}

func TestStatic_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Static(nil).Products(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFromConfig(t *testing.T) {
	require.IsType(t, FileSource{}, FromConfig(&config.Config{CatalogPath: "p.json", CatalogURL: "http://x"}, nil))
	require.IsType(t, HTTPSource{}, FromConfig(&config.Config{CatalogURL: "http://x"}, nil))
	require.IsType(t, staticSource{}, FromConfig(&config.Config{}, nil))
	require.IsType(t, staticSource{}, FromConfig(nil, nil))
}
