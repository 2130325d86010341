package mcp

import "github.com/mark3labs/mcp-go/mcp"

var categoriesToolDef = mcp.NewTool(
	"catalog_categories",
	mcp.WithDescription("List the distinct product categories in the catalog."),
)

var productsToolDef = mcp.NewTool(
	"catalog_products",
	mcp.WithDescription("List catalog products, optionally filtered to one category (exact match)."),
	mcp.WithString("category",
		mcp.Description("Category to filter by. Omit to list every product."),
	),
)

var productToolDef = mcp.NewTool(
	"catalog_product",
	mcp.WithDescription("Fetch one product with its full description."),
	mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("Product id"),
	),
)

var selectionGetToolDef = mcp.NewTool(
	"selection_get",
	mcp.WithDescription("Show the selected products in selection order."),
)

var selectionToggleToolDef = mcp.NewTool(
	"selection_toggle",
	mcp.WithDescription("Select a product, or deselect it if it is already selected. The selection persists across restarts."),
	mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("Product id"),
	),
)

var selectionRemoveToolDef = mcp.NewTool(
	"selection_remove",
	mcp.WithDescription("Remove the selected product at a zero-based position. Out of range positions change nothing."),
	mcp.WithNumber("position",
		mcp.Required(),
		mcp.Description("Zero-based position in the selection"),
		mcp.Min(0),
	),
)

var selectionClearToolDef = mcp.NewTool(
	"selection_clear",
	mcp.WithDescription("Remove every selected product."),
)

var routineGenerateToolDef = mcp.NewTool(
	"routine_generate",
	mcp.WithDescription("Ask the assistant for a step-by-step routine using only the selected products."),
)

var chatAskToolDef = mcp.NewTool(
	"chat_ask",
	mcp.WithDescription("Ask the assistant a follow-up question. The whole conversation so far is sent with it."),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("The question to ask"),
	),
)
