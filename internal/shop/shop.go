// Package shop coordinates the catalog, selection, transcript and assistant.
//
// Controller is the single owner of mutable state. Web handlers, MCP tools and
// CLI commands all go through it.
package shop

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hpungsan/regimen/internal/assistant"
	"github.com/hpungsan/regimen/internal/catalog"
	"github.com/hpungsan/regimen/internal/chat"
	"github.com/hpungsan/regimen/internal/errors"
	"github.com/hpungsan/regimen/internal/logging"
	"github.com/hpungsan/regimen/internal/selection"
	"github.com/hpungsan/regimen/internal/view"
)

// Controller dispatches user commands.
type Controller struct {
	// mu serializes selection mutations. Completion requests run outside it.
	mu sync.Mutex

	source     catalog.Source
	selection  *selection.Store
	transcript *chat.Transcript
	assistant  *assistant.Assistant
	logger     *zap.Logger
}

// New creates a Controller with a fresh transcript.
func New(source catalog.Source, store *selection.Store, asst *assistant.Assistant, logger *zap.Logger) *Controller {
	return &Controller{
		source:     source,
		selection:  store,
		transcript: chat.NewTranscript(),
		assistant:  asst,
		logger:     logging.OrNop(logger),
	}
}

// SelectionOutput is the selection snapshot returned by every selection command.
type SelectionOutput struct {
	Products []catalog.Product `json:"products"`
	Count    int               `json:"count"`
}

// ToggleOutput is the result of Toggle.
type ToggleOutput struct {
	Product   catalog.Product `json:"product"`
	Selected  bool            `json:"selected"`
	Selection SelectionOutput `json:"selection"`
}

// RemoveOutput is the result of RemoveAt.
type RemoveOutput struct {
	Position  int             `json:"position"`
	Removed   bool            `json:"removed"`
	Selection SelectionOutput `json:"selection"`
}

// BrowseInput selects what the page shows.
type BrowseInput struct {
	Category string
	// DetailID opens the overlay for that product when set. Any id is valid,
	// including 0.
	DetailID *int
	Notice   string
}

// Products fetches the whole catalog.
func (c *Controller) Products(ctx context.Context) ([]catalog.Product, error) {
	products, err := c.source.Products(ctx)
	if err != nil {
		c.logger.Warn("shop: catalog fetch failed", zap.Error(err))
		return nil, errors.NewCatalogUnavailable(err)
	}
	return products, nil
}

// ProductsInCategory fetches the catalog and keeps only category. An empty
// category returns every product.
func (c *Controller) ProductsInCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	products, err := c.Products(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return products, nil
	}
	return catalog.FilterByCategory(products, category), nil
}

// Categories lists the distinct catalog categories.
func (c *Controller) Categories(ctx context.Context) ([]string, error) {
	products, err := c.Products(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Categories(products), nil
}

// Detail looks up a single product.
func (c *Controller) Detail(ctx context.Context, id int) (catalog.Product, error) {
	products, err := c.Products(ctx)
	if err != nil {
		return catalog.Product{}, err
	}
	p, ok := catalog.Find(products, id)
	if !ok {
		return catalog.Product{}, errors.NewProductNotFound(id)
	}
	return p, nil
}

// Browse builds the full page for input.
func (c *Controller) Browse(ctx context.Context, input BrowseInput) (view.Page, error) {
	products, err := c.Products(ctx)
	if err != nil {
		return view.Page{}, err
	}

	pageInput := view.PageInput{
		Products:   products,
		Category:   input.Category,
		Transcript: c.transcript.Messages(),
		Notice:     input.Notice,
	}
	if input.DetailID != nil {
		p, ok := catalog.Find(products, *input.DetailID)
		if !ok {
			return view.Page{}, errors.NewProductNotFound(*input.DetailID)
		}
		pageInput.Detail = &p
	}

	c.mu.Lock()
	pageInput.Selection = c.selection.Products()
	c.mu.Unlock()

	return view.NewPage(pageInput), nil
}

// Toggle adds the product with id to the selection, or removes it if present.
func (c *Controller) Toggle(ctx context.Context, id int) (*ToggleOutput, error) {
	p, err := c.Detail(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	selected, err := c.selection.Toggle(ctx, p)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("shop: toggled", zap.Int("product_id", id), zap.Bool("selected", selected))

	return &ToggleOutput{Product: p, Selected: selected, Selection: c.snapshotLocked()}, nil
}

// RemoveAt removes the selected product at position. Out of range is not an error.
func (c *Controller) RemoveAt(ctx context.Context, position int) (*RemoveOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed, err := c.selection.RemoveAt(ctx, position)
	if err != nil {
		return nil, err
	}
	return &RemoveOutput{Position: position, Removed: removed, Selection: c.snapshotLocked()}, nil
}

// Clear empties the selection.
func (c *Controller) Clear(ctx context.Context) (*SelectionOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.selection.Clear(ctx); err != nil {
		return nil, err
	}
	out := c.snapshotLocked()
	return &out, nil
}

// Selection returns the current selection.
func (c *Controller) Selection() SelectionOutput {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// GenerateRoutine asks the assistant for a routine built from the current selection.
// The reply is applied whenever it arrives, even if the selection changed meanwhile.
func (c *Controller) GenerateRoutine(ctx context.Context) assistant.RoutineResult {
	c.mu.Lock()
	products := c.selection.Products()
	c.mu.Unlock()

	return c.assistant.GenerateRoutine(ctx, c.transcript, products)
}

// Ask sends a follow-up question. Blank text reports false and changes nothing.
func (c *Controller) Ask(ctx context.Context, text string) (chat.Message, bool) {
	return c.assistant.FollowUp(ctx, c.transcript, text)
}

// Transcript returns the visible conversation, system prompt excluded.
func (c *Controller) Transcript() []chat.Message {
	return c.transcript.Visible()
}

func (c *Controller) snapshotLocked() SelectionOutput {
	products := c.selection.Products()
	return SelectionOutput{Products: products, Count: len(products)}
}
