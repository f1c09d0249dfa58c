package mcp

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/boardgen/internal/config"
	"github.com/hpungsan/boardgen/internal/registry"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var classifyToolDef = mcp.NewTool("board_classify",
	mcp.WithDescription("Classify a microcontroller model string (e.g. ATMEGA328P) by word width and memory architecture."),
	mcp.WithString("mcu", mcp.Required(), mcp.Description("MCU model string, upper case as listed by PlatformIO")),
)

var normalizeToolDef = mcp.NewTool("board_normalize",
	mcp.WithDescription("Strip trailing port, bootloader and voltage/clock qualifiers from a board display name."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Board display name")),
)

var tableToolDef = mcp.NewTool("board_table",
	mcp.WithDescription("Build the board table from the configured registry and return it with unknown-MCU warnings."),
	mcp.WithBoolean("all", mcp.Description("Include boards outside the brand prefix")),
	mcp.WithString("format", mcp.Description("Output format: bits (default) or legacy")),
	mcp.WithString("brand", mcp.Description("Brand prefix filter (default from config)")),
)

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"board_classify": {
		def:     classifyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClassify },
	},
	"board_normalize": {
		def:     normalizeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNormalize },
	},
	"board_table": {
		def:     tableToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTable },
	},
}

// AllToolNames returns the names of all tools, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewServer creates a new MCP server with the board tools registered.
func NewServer(reg registry.Registry, cfg *config.Config, version string) (*server.MCPServer, error) {
	h, err := NewHandlers(reg, cfg)
	if err != nil {
		return nil, err
	}

	s := server.NewMCPServer(
		"boardgen",
		version,
		server.WithToolCapabilities(true),
	)

	for _, name := range AllToolNames() {
		entry := toolRegistry[name]
		s.AddTool(entry.def, entry.handler(h))
	}

	return s, nil
}

// Run starts the MCP server using stdio transport.
func Run(reg registry.Registry, cfg *config.Config, version string) error {
	s, err := NewServer(reg, cfg, version)
	if err != nil {
		return err
	}
	return server.ServeStdio(s)
}

