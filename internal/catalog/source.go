package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/hpungsan/regimen/internal/config"
)

// maxDocumentBytes caps how much of a catalog document is read.
const maxDocumentBytes = 10 << 20

//go:embed products.json
var embeddedProducts []byte

// Source fetches the full product list. Implementations re-read on every call.
type Source interface {
	Products(ctx context.Context) ([]Product, error)
}

// FileSource reads the catalog document from a local file.
type FileSource struct {
	Path string
}

// Products implements Source.
func (s FileSource) Products(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", s.Path, err)
	}
	return Decode(data)
}

// HTTPSource fetches the catalog document with a GET request.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// Products implements Source.
func (s HTTPSource) Products(ctx context.Context) ([]Product, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch catalog: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("read catalog body: %w", err)
	}
	return Decode(data)
}

// staticSource serves a fixed document.
type staticSource struct {
	data []byte
}

func (s staticSource) Products(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Decode(s.data)
}

// Embedded returns the built-in sample catalog.
func Embedded() Source {
	return staticSource{data: embeddedProducts}
}

// Static returns a Source serving a copy of products on every call.
func Static(products []Product) Source {
	return staticProducts(slices.Clone(products))
}

type staticProducts []Product

func (s staticProducts) Products(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone([]Product(s)), nil
}

// FromConfig picks the catalog source: CatalogPath, then CatalogURL, then the built-in catalog.
func FromConfig(cfg *config.Config, client *http.Client) Source {
	if cfg != nil {
		if path := strings.TrimSpace(cfg.CatalogPath); path != "" {
			return FileSource{Path: path}
		}
		if url := strings.TrimSpace(cfg.CatalogURL); url != "" {
			return HTTPSource{URL: url, Client: client}
		}
	}
	return Embedded()
}
