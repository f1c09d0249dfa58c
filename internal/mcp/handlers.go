package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/boardgen/internal/boards"
	"github.com/hpungsan/boardgen/internal/config"
	"github.com/hpungsan/boardgen/internal/errors"
	"github.com/hpungsan/boardgen/internal/output"
	"github.com/hpungsan/boardgen/internal/registry"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	reg        registry.Registry
	cfg        *config.Config
	classifier *boards.Classifier
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(reg registry.Registry, cfg *config.Config) (*Handlers, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	classifier, err := cfg.Classifier()
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	return &Handlers{reg: reg, cfg: cfg, classifier: classifier}, nil
}

// ClassifyRequest represents the arguments for board_classify.
type ClassifyRequest struct {
	MCU string `json:"mcu"`
}

// ClassifyResponse is the result of board_classify.
type ClassifyResponse struct {
	MCU         string `json:"mcu"`
	Known       bool   `json:"known"`
	Bits        int    `json:"bits,omitempty"`
	MemoryModel string `json:"memory_model,omitempty"`
	Progmem     bool   `json:"progmem,omitempty"`
}

// NormalizeRequest represents the arguments for board_normalize.
type NormalizeRequest struct {
	Name string `json:"name"`
}

// NormalizeResponse is the result of board_normalize.
type NormalizeResponse struct {
	Name       string `json:"name"`
	Normalized string `json:"normalized"`
}

// TableRequest represents the arguments for board_table.
type TableRequest struct {
	All    bool   `json:"all,omitempty"`
	Format string `json:"format,omitempty"`
	Brand  string `json:"brand,omitempty"`
}

// TableResponse is the result of board_table.
type TableResponse struct {
	Boards   any              `json:"boards"`
	Count    int              `json:"count"`
	Warnings []boards.Warning `json:"warnings"`
}

// HandleClassify handles the board_classify tool call.
func (h *Handlers) HandleClassify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ClassifyRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	mcu := strings.TrimSpace(input.MCU)
	if mcu == "" {
		return errorResult(errors.NewInvalidRequest("mcu is required")), nil
	}

	c := h.classifier.Classify(mcu)
	return successResult(ClassifyResponse{
		MCU:         mcu,
		Known:       c.Known,
		Bits:        c.Bits,
		MemoryModel: c.MemoryModel(),
		Progmem:     c.Harvard,
	})
}

// HandleNormalize handles the board_normalize tool call.
func (h *Handlers) HandleNormalize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NormalizeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if strings.TrimSpace(input.Name) == "" {
		return errorResult(errors.NewInvalidRequest("name is required")), nil
	}

	return successResult(NormalizeResponse{
		Name:       input.Name,
		Normalized: boards.NormalizeName(input.Name),
	})
}

// HandleTable handles the board_table tool call.
func (h *Handlers) HandleTable(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TableRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if h.reg == nil {
		return errorResult(errors.NewSourceUnavailable(h.cfg.Source, fmt.Errorf("no registry configured"))), nil
	}

	format := input.Format
	if format == "" {
		format = h.cfg.Format
	}
	brand := input.Brand
	if brand == "" {
		brand = h.cfg.BrandPrefix
	}

	records, err := h.reg.ListBoards(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	res := boards.Build(ctx, records, h.classifier)
	entries := res.Filter(brand, input.All || h.cfg.IncludeAll())
	table, err := output.Table(entries, format)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(TableResponse{
		Boards:   table,
		Count:    len(entries),
		Warnings: res.Unknown.Warnings(h.cfg.MaxExamples),
	})
}

// decode unmarshals MCP request arguments into a typed struct.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}

// errorResult creates an MCP error result from any error.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if bErr, ok := err.(*errors.BoardError); ok {
		errorObj := map[string]any{
			"code":    bErr.Code,
			"message": bErr.Message,
			"status":  bErr.Status,
		}
		if bErr.Code != errors.ErrInternal && bErr.Details != nil {
			errorObj["details"] = bErr.Details
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
