// Package view builds display models from catalog, selection and transcript
// snapshots. Everything here is pure: no I/O, no shared state.
package view

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hpungsan/regimen/internal/catalog"
	"github.com/hpungsan/regimen/internal/chat"
)

const (
	// CategoryPlaceholder fills the catalog area until a category is chosen.
	CategoryPlaceholder = "Select a category to view products"

	// EmptyCategoryText is shown when a chosen category has no products.
	EmptyCategoryText = "No products in this category."

	// TrayPlaceholder is shown when nothing is selected.
	TrayPlaceholder = "No products selected."
)

// Card is one product in the catalog grid.
type Card struct {
	ID       int
	Name     string
	Brand    string
	Category string
	Image    string
	Selected bool
}

// CatalogView is the catalog area.
type CatalogView struct {
	Category    string
	Chosen      bool
	Placeholder string
	Cards       []Card
}

// TrayItem is one compact entry in the selected products tray.
type TrayItem struct {
	Position int
	ID       int
	Name     string
	Brand    string
	Image    string
}

// TrayView is the selected products tray.
type TrayView struct {
	Items        []TrayItem
	Empty        bool
	Placeholder  string
	ShowClearAll bool
}

// DetailView is the overlay with a product's full description.
type DetailView struct {
	ID          int
	Name        string
	Brand       string
	Category    string
	Image       string
	Description string
	Selected    bool
}

// ChatMessage is a rendered transcript entry.
type ChatMessage struct {
	ID        string
	Role      string
	Content   string
	FromUser  bool
	CreatedAt int64
}

// ChatView is the chat window.
type ChatView struct {
	Messages []ChatMessage
	Notice   string
}

// CategoryOption is one entry of the category filter.
type CategoryOption struct {
	Value    string
	Label    string
	Selected bool
}

// Page is the full screen. Catalog and Tray come from the same selection
// snapshot, so they always agree on membership.
type Page struct {
	Categories []CategoryOption
	Catalog    CatalogView
	Tray       TrayView
	Detail     *DetailView
	Chat       ChatView
}

// Catalog renders one card per product, marking those present in selection.
func Catalog(products, selection []catalog.Product) CatalogView {
	selected := idSet(selection)
	cards := make([]Card, len(products))
	for i, p := range products {
		cards[i] = Card{
			ID:       p.ID,
			Name:     p.Name,
			Brand:    p.Brand,
			Category: p.Category,
			Image:    p.Image,
			Selected: selected[p.ID],
		}
	}
	return CatalogView{Chosen: true, Cards: cards}
}

// Tray renders the selection in order with each item's removal position.
func Tray(selection []catalog.Product) TrayView {
	if len(selection) == 0 {
		return TrayView{Items: []TrayItem{}, Empty: true, Placeholder: TrayPlaceholder}
	}
	items := make([]TrayItem, len(selection))
	for i, p := range selection {
		items[i] = TrayItem{Position: i, ID: p.ID, Name: p.Name, Brand: p.Brand, Image: p.Image}
	}
	return TrayView{Items: items, ShowClearAll: true}
}

// Detail renders the overlay for p.
func Detail(p catalog.Product, selection []catalog.Product) DetailView {
	return DetailView{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Category:    p.Category,
		Image:       p.Image,
		Description: p.Description,
		Selected:    idSet(selection)[p.ID],
	}
}

// Chat renders the visible transcript (system messages dropped) with an
// optional inline notice.
func Chat(messages []chat.Message, notice string) ChatView {
	out := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == chat.RoleSystem {
			continue
		}
		out = append(out, ChatMessage{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			FromUser:  m.Role == chat.RoleUser,
			CreatedAt: m.CreatedAt,
		})
	}
	return ChatView{Messages: out, Notice: notice}
}

// Categories lists the distinct categories of products with display labels,
// marking current as selected.
func Categories(products []catalog.Product, current string) []CategoryOption {
	caser := cases.Title(language.English)
	names := catalog.Categories(products)
	opts := make([]CategoryOption, len(names))
	for i, name := range names {
		opts[i] = CategoryOption{Value: name, Label: caser.String(name), Selected: name == current}
	}
	return opts
}

// PageInput is everything NewPage needs.
type PageInput struct {
	// Products is the full catalog snapshot.
	Products []catalog.Product
	// Selection is the selection snapshot.
	Selection []catalog.Product
	// Category is the chosen filter; empty means none chosen.
	Category string
	// Detail, when non-nil, opens the overlay for that product.
	Detail *catalog.Product
	// Transcript is the full message history.
	Transcript []chat.Message
	// Notice is an inline message for the chat window.
	Notice string
}

// NewPage builds catalog, tray, overlay and chat in one pass.
func NewPage(in PageInput) Page {
	page := Page{
		Categories: Categories(in.Products, in.Category),
		Tray:       Tray(in.Selection),
		Chat:       Chat(in.Transcript, in.Notice),
	}

	if in.Category == "" {
		page.Catalog = CatalogView{Placeholder: CategoryPlaceholder, Cards: []Card{}}
	} else {
		page.Catalog = Catalog(catalog.FilterByCategory(in.Products, in.Category), in.Selection)
		page.Catalog.Category = in.Category
		if len(page.Catalog.Cards) == 0 {
			page.Catalog.Placeholder = EmptyCategoryText
		}
	}

	if in.Detail != nil {
		d := Detail(*in.Detail, in.Selection)
		page.Detail = &d
	}
	return page
}

func idSet(products []catalog.Product) map[int]bool {
	set := make(map[int]bool, len(products))
	for _, p := range products {
		set[p.ID] = true
	}
	return set
}
