package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/promptbase/internal/config"
	"github.com/hpungsan/promptbase/internal/errors"
	"github.com/hpungsan/promptbase/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store   ops.Store
	cfg     *config.Config
	baseDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store ops.Store, cfg *config.Config, baseDir string) *Handlers {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Handlers{store: store, cfg: cfg, baseDir: baseDir}
}

// IDRequest is the argument shape of get and delete.
type IDRequest struct {
	ID int64 `json:"id"`
}

// CreateRequest represents the arguments for prompt_create.
type CreateRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Favorite bool   `json:"favorite,omitempty"`
}

// UpdateRequest represents the arguments for prompt_update.
type UpdateRequest struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// FavoriteRequest represents the arguments for prompt_favorite.
type FavoriteRequest struct {
	ID    int64 `json:"id"`
	Value *bool `json:"value,omitempty"`
}

// HandleCreate handles the prompt_create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Create(ctx, h.store, ops.CreateInput{
		Title:    input.Title,
		Body:     input.Body,
		Favorite: input.Favorite,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGet handles the prompt_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Get(ctx, h.store, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleUpdate handles the prompt_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Update(ctx, h.store, ops.UpdateInput{
		ID:    input.ID,
		Title: input.Title,
		Body:  input.Body,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFavorite handles the prompt_favorite tool call.
func (h *Handlers) HandleFavorite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FavoriteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Favorite(ctx, h.store, ops.FavoriteInput{ID: input.ID, Value: input.Value})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDelete handles the prompt_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.store, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleList handles the prompt_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ListInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.store, h.cfg, input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExport handles the prompt_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ExportInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.store, h.baseDir, input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleImport handles the prompt_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ImportInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.store, input)
	if err != nil {
		if result != nil {
			return partialErrorResult(err, result), nil
		}
		return errorResult(err), nil
	}
	return successResult(result)
}

// decode round-trips the request arguments through JSON into T.
// JSON numbers arrive as float64, so integer fields must go through json.
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

// errorResult creates an IsError tool result. INTERNAL errors carry only a
// generic message so SQL text and file paths stay on the server.
func errorResult(err error) *mcp.CallToolResult {
	return toolError(map[string]any{"error": errorObject(err)})
}

// partialErrorResult reports a failure that left work behind, such as an
// import that stopped after storing some lines.
func partialErrorResult(err error, partial any) *mcp.CallToolResult {
	return toolError(map[string]any{"error": errorObject(err), "partial": partial})
}

func errorObject(err error) map[string]any {
	errorObj := map[string]any{
		"code":    string(errors.ErrInternal),
		"message": "an internal error occurred",
		"status":  500,
	}
	if pErr := errors.As(err); pErr != nil && pErr.Code != errors.ErrInternal {
		errorObj["code"] = string(pErr.Code)
		errorObj["message"] = pErr.Message
		errorObj["status"] = pErr.Status
		if pErr.Details != nil {
			errorObj["details"] = pErr.Details
		}
	}

	return errorObj
}

func toolError(body map[string]any) *mcp.CallToolResult {
	content, _ := json.Marshal(body)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
