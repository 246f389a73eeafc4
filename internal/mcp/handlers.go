package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/hpungsan/sigdecode/internal/config"
	"github.com/hpungsan/sigdecode/internal/dictionary"
	"github.com/hpungsan/sigdecode/internal/errors"
	"github.com/hpungsan/sigdecode/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db   *sql.DB
	cfg  *config.Config
	dict *dictionary.Set
	log  zerolog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, dict *dictionary.Set, log zerolog.Logger) *Handlers {
	return &Handlers{
		db:   db,
		cfg:  cfg,
		dict: dict,
		log:  log,
	}
}

// DecodeRequest represents the arguments for signal_decode.
type DecodeRequest struct {
	SignalPath   string `json:"signal_path,omitempty"`
	WindowLength int    `json:"window_length,omitempty"`
	Workers      int    `json:"workers,omitempty"`
	Record       *bool  `json:"record,omitempty"`
	Suggest      bool   `json:"suggest,omitempty"`
}

func (r *DecodeRequest) check() error {
	if r.WindowLength < 0 {
		return errors.NewInvalidRequest("window_length must be positive")
	}
	if r.Workers < 0 {
		return errors.NewInvalidRequest("workers must not be negative")
	}
	return nil
}

// ListRequest represents the arguments for run_list.
type ListRequest struct {
	SignalHash  string `json:"signal_hash,omitempty"`
	MatchedOnly bool   `json:"matched_only,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}

// IDRequest represents the arguments for run_fetch and run_delete.
type IDRequest struct {
	ID string `json:"id"`
}

func (r *IDRequest) check() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.NewInvalidRequest("id is required")
	}
	return nil
}

// ExportRequest represents the arguments for run_export.
type ExportRequest struct {
	ID     string `json:"id"`
	Format string `json:"format,omitempty"`
	Path   string `json:"path,omitempty"`
}

func (r *ExportRequest) check() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.NewInvalidRequest("id is required")
	}
	return nil
}

// HandleDecode handles the signal_decode tool call.
func (h *Handlers) HandleDecode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := bindArgs[DecodeRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Decode(ctx, h.db, h.cfg, h.dict, h.log, ops.DecodeInput{
		SignalPath:   input.SignalPath,
		WindowLength: input.WindowLength,
		Workers:      input.Workers,
		Record:       input.Record,
		Suggest:      input.Suggest,
		CheckPath:    true,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the run_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := bindArgs[ListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		SignalHash:  input.SignalHash,
		MatchedOnly: input.MatchedOnly,
		Limit:       input.Limit,
		Offset:      input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFetch handles the run_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := bindArgs[IDRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Fetch(ctx, h.db, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the run_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := bindArgs[IDRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Delete(ctx, h.db, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the run_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := bindArgs[ExportRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	format, err := ops.ParseExportFormat(input.Format)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Export(ctx, h.db, h.cfg, h.dict, ops.ExportInput{
		ID:     input.ID,
		Format: format,
		Path:   input.Path,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// errorResult creates an MCP error result with IsError set.
// INTERNAL errors omit details, and non-SigError values are reported as a
// generic internal error, so paths and SQL text do not leak to clients.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var sErr *errors.SigError
	if stderrors.As(err, &sErr) {
		// Keep any wrapping context, but not the code prefix from SigError.Error.
		msg := strings.Replace(err.Error(), sErr.Error(), sErr.Message, 1)
		errorObj := map[string]any{
			"code":    sErr.Code,
			"message": msg,
			"status":  sErr.Status,
		}
		if sErr.Code != errors.ErrInternal && sErr.Details != nil {
			errorObj["details"] = sErr.Details
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
