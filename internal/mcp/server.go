package mcp

import (
	"maps"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/regimen/internal/config"
	"github.com/hpungsan/regimen/internal/shop"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"catalog", "selection", "routine", "chat"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"catalog_categories": {
		def:     categoriesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCategories },
	},
	"catalog_products": {
		def:     productsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProducts },
	},
	"catalog_product": {
		def:     productToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProduct },
	},
	"selection_get": {
		def:     selectionGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSelectionGet },
	},
	"selection_toggle": {
		def:     selectionToggleToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSelectionToggle },
	},
	"selection_remove": {
		def:     selectionRemoveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSelectionRemove },
	},
	"selection_clear": {
		def:     selectionClearToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSelectionClear },
	},
	"routine_generate": {
		def:     routineGenerateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRoutineGenerate },
	},
	"chat_ask": {
		def:     chatAskToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleChatAsk },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	return slices.Sorted(maps.Keys(toolRegistry))
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "selection_toggle" → "selection").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// enabledTools returns the registry names left after removing disabled tools and types.
func enabledTools(cfg *config.Config) []string {
	disabled := make(map[string]bool)
	if cfg != nil {
		for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
			disabled[tool] = true
		}
		for _, name := range cfg.DisabledTools {
			disabled[name] = true
		}
	}

	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		if !disabled[name] {
			names = append(names, name)
		}
	}
	return names
}

// NewServer creates a new MCP server with regimen tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(ctrl *shop.Controller, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"regimen",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(ctrl)
	for _, name := range enabledTools(cfg) {
		entry := toolRegistry[name]
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(ctrl *shop.Controller, cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(ctrl, cfg, version))
}
