package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/regimen/internal/errors"
	"github.com/hpungsan/regimen/internal/shop"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	ctrl *shop.Controller
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(ctrl *shop.Controller) *Handlers {
	return &Handlers{ctrl: ctrl}
}

// Request types for each tool

// ProductsRequest represents the arguments for catalog_products.
type ProductsRequest struct {
	Category string `json:"category,omitempty"`
}

// ProductRequest represents the arguments for catalog_product and selection_toggle.
type ProductRequest struct {
	ID *int `json:"id"`
}

// RemoveRequest represents the arguments for selection_remove.
type RemoveRequest struct {
	Position *int `json:"position"`
}

// AskRequest represents the arguments for chat_ask.
type AskRequest struct {
	Message string `json:"message"`
}

// Handler implementations

// HandleCategories handles the catalog_categories tool call.
func (h *Handlers) HandleCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	categories, err := h.ctrl.Categories(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"categories": categories})
}

// HandleProducts handles the catalog_products tool call.
func (h *Handlers) HandleProducts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProductsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	products, err := h.ctrl.ProductsInCategory(ctx, strings.TrimSpace(input.Category))
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"category": input.Category, "products": products})
}

// HandleProduct handles the catalog_product tool call.
func (h *Handlers) HandleProduct(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := decodeProductID(req)
	if err != nil {
		return errorResult(err), nil
	}

	p, err := h.ctrl.Detail(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(p)
}

// HandleSelectionGet handles the selection_get tool call.
func (h *Handlers) HandleSelectionGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.ctrl.Selection())
}

// HandleSelectionToggle handles the selection_toggle tool call.
func (h *Handlers) HandleSelectionToggle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := decodeProductID(req)
	if err != nil {
		return errorResult(err), nil
	}

	out, err := h.ctrl.Toggle(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleSelectionRemove handles the selection_remove tool call.
func (h *Handlers) HandleSelectionRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RemoveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Position == nil {
		return errorResult(errors.NewInvalidRequest("position is required")), nil
	}

	out, err := h.ctrl.RemoveAt(ctx, *input.Position)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleSelectionClear handles the selection_clear tool call.
func (h *Handlers) HandleSelectionClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := h.ctrl.Clear(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleRoutineGenerate handles the routine_generate tool call.
// An empty selection is reported as a notice, not an error.
func (h *Handlers) HandleRoutineGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res := h.ctrl.GenerateRoutine(ctx)
	if !res.Requested {
		return successResult(map[string]any{"requested": false, "notice": res.Notice})
	}
	return successResult(map[string]any{
		"requested": true,
		"fallback":  res.Fallback,
		"reply":     res.Reply,
	})
}

// HandleChatAsk handles the chat_ask tool call.
func (h *Handlers) HandleChatAsk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AskRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	reply, ok := h.ctrl.Ask(ctx, input.Message)
	if !ok {
		return errorResult(errors.NewInvalidRequest("message must not be blank")), nil
	}
	return successResult(map[string]any{"reply": reply})
}

func decodeProductID(req mcp.CallToolRequest) (int, error) {
	input, err := decode[ProductRequest](req)
	if err != nil {
		return 0, errors.NewInvalidRequest(err.Error())
	}
	if input.ID == nil {
		return 0, errors.NewInvalidRequest("id is required")
	}
	return *input.ID, nil
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if rErr, ok := errors.As(err); ok {
		errorObj := map[string]any{
			"code":    rErr.Code,
			"message": rErr.Message,
			"status":  rErr.Status,
		}
		if rErr.Code != errors.ErrInternal && rErr.Details != nil {
			errorObj["details"] = rErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
