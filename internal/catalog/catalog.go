// Package catalog reads the read-only product catalog.
//
// The catalog is fetched on demand and never cached: every call to a Source
// re-reads the underlying document so filter changes always see current data.
package catalog

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// Product is an externally supplied catalog entry.
// Fields are read best-effort; missing fields decode to zero values.
type Product struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

// Document is the JSON shape served by every catalog source.
type Document struct {
	Products []Product `json:"products"`
}

// Decode parses a catalog document. A document without a products field yields an empty list.
func Decode(data []byte) ([]Product, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if doc.Products == nil {
		return []Product{}, nil
	}
	return doc.Products, nil
}

// FilterByCategory returns the products whose category equals category, in catalog order.
func FilterByCategory(products []Product, category string) []Product {
	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Find returns the first product with the given id.
func Find(products []Product, id int) (Product, bool) {
	i := slices.IndexFunc(products, func(p Product) bool { return p.ID == id })
	if i < 0 {
		return Product{}, false
	}
	return products[i], true
}

// Categories returns the distinct non-empty categories, sorted.
func Categories(products []Product) []string {
	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, p := range products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	return categories
}
