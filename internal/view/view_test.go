package view

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/hpungsan/regimen/internal/catalog"
	"github.com/hpungsan/regimen/internal/chat"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var products = []catalog.Product{
	{ID: 1, Name: "Foaming Cleanser", Brand: "CeraVe", Category: "cleanser", Image: "1.png", Description: "Removes oil."},
	{ID: 2, Name: "Hydrating Cleanser", Brand: "CeraVe", Category: "cleanser", Image: "2.png", Description: "Gentle."},
	{ID: 3, Name: "Anthelios", Brand: "La Roche-Posay", Category: "suncare", Image: "3.png", Description: "SPF 50."},
}

func TestCatalog_MarksSelected(t *testing.T) {
	got := Catalog(products[:2], []catalog.Product{products[1]})

	want := CatalogView{
		Chosen: true,
		Cards: []Card{
			{ID: 1, Name: "Foaming Cleanser", Brand: "CeraVe", Category: "cleanser", Image: "1.png"},
			{ID: 2, Name: "Hydrating Cleanser", Brand: "CeraVe", Category: "cleanser", Image: "2.png", Selected: true},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Catalog() mismatch (-want +got):\n%s", diff)
	}
}

func TestTray_Empty(t *testing.T) {
	got := Tray(nil)

	want := TrayView{Items: []TrayItem{}, Empty: true, Placeholder: TrayPlaceholder}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tray(nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestTray_PositionsFollowSelectionOrder(t *testing.T) {
	got := Tray([]catalog.Product{products[2], products[0]})

	want := TrayView{
		Items: []TrayItem{
			{Position: 0, ID: 3, Name: "Anthelios", Brand: "La Roche-Posay", Image: "3.png"},
			{Position: 1, ID: 1, Name: "Foaming Cleanser", Brand: "CeraVe", Image: "1.png"},
		},
		ShowClearAll: true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tray() mismatch (-want +got):\n%s", diff)
	}
}

func TestDetail(t *testing.T) {
	got := Detail(products[2], []catalog.Product{products[2]})

	want := DetailView{
		ID:          3,
		Name:        "Anthelios",
		Brand:       "La Roche-Posay",
		Category:    "suncare",
		Image:       "3.png",
		Description: "SPF 50.",
		Selected:    true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Detail() mismatch (-want +got):\n%s", diff)
	}
}

func TestChat_HidesSystemPrompt(t *testing.T) {
	messages := []chat.Message{
		{ID: "a", Role: chat.RoleSystem, Content: chat.SystemPrompt},
		{ID: "b", Role: chat.RoleUser, Content: "hi"},
		{ID: "c", Role: chat.RoleAssistant, Content: "hello"},
	}

	got := Chat(messages, "note")

	want := ChatView{
		Messages: []ChatMessage{
			{ID: "b", Role: "user", Content: "hi", FromUser: true},
			{ID: "c", Role: "assistant", Content: "hello"},
		},
		Notice: "note",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Chat() mismatch (-want +got):\n%s", diff)
	}
}

func TestCategories_Labels(t *testing.T) {
	got := Categories(products, "suncare")

	want := []CategoryOption{
		{Value: "cleanser", Label: "Cleanser"},
		{Value: "suncare", Label: "Suncare", Selected: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Categories() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewPage_NoCategoryShowsPlaceholder(t *testing.T) {
	page := NewPage(PageInput{Products: products})

	if page.Catalog.Chosen {
		t.Error("Catalog.Chosen = true, want false")
	}
	if page.Catalog.Placeholder != CategoryPlaceholder {
		t.Errorf("Placeholder = %q, want %q", page.Catalog.Placeholder, CategoryPlaceholder)
	}
	if len(page.Catalog.Cards) != 0 {
		t.Errorf("got %d cards, want 0", len(page.Catalog.Cards))
	}
	if page.Detail != nil {
		t.Error("Detail should be nil")
	}
}

func TestNewPage_UnknownCategory(t *testing.T) {
	page := NewPage(PageInput{Products: products, Category: "fragrance"})

	if !page.Catalog.Chosen {
		t.Error("Catalog.Chosen = false, want true")
	}
	if page.Catalog.Placeholder != EmptyCategoryText {
		t.Errorf("Placeholder = %q, want %q", page.Catalog.Placeholder, EmptyCategoryText)
	}
}

// Catalog and tray must agree on membership for every selection.
func TestNewPage_CatalogAndTrayAgree(t *testing.T) {
	selections := [][]catalog.Product{
		nil,
		{products[0]},
		{products[1], products[0]},
		{products[2]},
	}

	for _, sel := range selections {
		page := NewPage(PageInput{Products: products, Selection: sel, Category: "cleanser"})

		inTray := make(map[int]bool)
		for _, item := range page.Tray.Items {
			inTray[item.ID] = true
		}
		for _, card := range page.Catalog.Cards {
			if card.Selected != inTray[card.ID] {
				t.Errorf("selection %v: card %d Selected=%v, tray has it=%v", sel, card.ID, card.Selected, inTray[card.ID])
			}
		}
		if page.Tray.ShowClearAll == page.Tray.Empty {
			t.Errorf("selection %v: ShowClearAll=%v Empty=%v", sel, page.Tray.ShowClearAll, page.Tray.Empty)
		}
	}
}

func TestNewPage_Detail(t *testing.T) {
	p := products[0]
	page := NewPage(PageInput{Products: products, Category: "cleanser", Detail: &p})

	if page.Detail == nil {
		t.Fatal("Detail = nil, want overlay")
	}
	if page.Detail.Description != "Removes oil." {
		t.Errorf("Description = %q", page.Detail.Description)
	}
}
