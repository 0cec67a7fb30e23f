package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/promptbase/internal/config"
	"github.com/hpungsan/promptbase/internal/db"
	"github.com/hpungsan/promptbase/internal/errors"
	"github.com/hpungsan/promptbase/internal/ops"
)

// testSetup opens a temporary store and returns handlers over it.
func testSetup(t *testing.T) (*Handlers, *db.Store, string) {
	t.Helper()

	tmpDir := t.TempDir()
	store, err := db.OpenSQLite(tmpDir, nil)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewHandlers(store, config.DefaultConfig(), tmpDir), store, tmpDir
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// createPrompt calls prompt_create and returns the new id.
func createPrompt(t *testing.T, h *Handlers, title, body string, favorite bool) float64 {
	t.Helper()
	result, err := h.HandleCreate(context.Background(), makeRequest(map[string]any{
		"title":    title,
		"body":     body,
		"favorite": favorite,
	}))
	if err != nil {
		t.Fatalf("HandleCreate error: %v", err)
	}
	return parseOutput(t, result)["id"].(float64)
}

func TestHandleCreate(t *testing.T) {
	h, _, _ := testSetup(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name:      "valid prompt",
			args:      map[string]any{"title": "Greeting", "body": "Say hello."},
			wantError: false,
		},
		{
			name:      "favorite on create",
			args:      map[string]any{"title": "Star", "body": "text", "favorite": true},
			wantError: false,
		},
		{
			name:      "missing body",
			args:      map[string]any{"title": "No body"},
			wantError: true,
			errorCode: "VALIDATION_FAILED",
		},
		{
			name:      "whitespace title",
			args:      map[string]any{"title": "   ", "body": "text"},
			wantError: true,
			errorCode: "VALIDATION_FAILED",
		},
		{
			name:      "wrong type",
			args:      map[string]any{"title": 42, "body": "text"},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleCreate(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("unexpected Go error: %v", err)
			}
			if result.IsError != tt.wantError {
				t.Fatalf("IsError = %v, want %v: %s", result.IsError, tt.wantError, extractErrorMessage(result))
			}
			if tt.wantError {
				assertErrorCode(t, result, tt.errorCode)
				return
			}
			out := parseOutput(t, result)
			if out["id"].(float64) <= 0 {
				t.Errorf("id = %v, want positive", out["id"])
			}
			if out["title"] != tt.args["title"] {
				t.Errorf("title = %v, want %v", out["title"], tt.args["title"])
			}
		})
	}
}

func TestHandleGet(t *testing.T) {
	h, _, _ := testSetup(t)
	ctx := context.Background()
	id := createPrompt(t, h, "Fetch me", "body", false)

	result, err := h.HandleGet(ctx, makeRequest(map[string]any{"id": id}))
	if err != nil {
		t.Fatalf("HandleGet error: %v", err)
	}
	out := parseOutput(t, result)
	if out["title"] != "Fetch me" {
		t.Errorf("title = %v, want Fetch me", out["title"])
	}

	result, _ = h.HandleGet(ctx, makeRequest(map[string]any{"id": 9999}))
	assertErrorCode(t, result, "NOT_FOUND")

	result, _ = h.HandleGet(ctx, makeRequest(map[string]any{}))
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleUpdate(t *testing.T) {
	h, _, _ := testSetup(t)
	ctx := context.Background()
	id := createPrompt(t, h, "Old", "old body", true)

	result, err := h.HandleUpdate(ctx, makeRequest(map[string]any{"id": id, "title": "New", "body": "new body"}))
	if err != nil {
		t.Fatalf("HandleUpdate error: %v", err)
	}
	out := parseOutput(t, result)
	if out["title"] != "New" || out["body"] != "new body" {
		t.Errorf("out = %v, want New/new body", out)
	}
	if out["is_favorite"] != true {
		t.Error("update cleared is_favorite")
	}

	result, _ = h.HandleUpdate(ctx, makeRequest(map[string]any{"id": id, "title": "", "body": "x"}))
	assertErrorCode(t, result, "VALIDATION_FAILED")

	result, _ = h.HandleUpdate(ctx, makeRequest(map[string]any{"id": 9999, "title": "a", "body": "b"}))
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleFavorite(t *testing.T) {
	h, _, _ := testSetup(t)
	ctx := context.Background()
	id := createPrompt(t, h, "Star", "body", false)

	result, _ := h.HandleFavorite(ctx, makeRequest(map[string]any{"id": id}))
	if parseOutput(t, result)["is_favorite"] != true {
		t.Error("toggle from false should give true")
	}

	result, _ = h.HandleFavorite(ctx, makeRequest(map[string]any{"id": id, "value": true}))
	if parseOutput(t, result)["is_favorite"] != true {
		t.Error("explicit true should keep true")
	}

	result, _ = h.HandleFavorite(ctx, makeRequest(map[string]any{"id": id}))
	if parseOutput(t, result)["is_favorite"] != false {
		t.Error("toggle from true should give false")
	}
}

func TestHandleDelete(t *testing.T) {
	h, _, _ := testSetup(t)
	ctx := context.Background()
	id := createPrompt(t, h, "Bye", "body", false)

	result, err := h.HandleDelete(ctx, makeRequest(map[string]any{"id": id}))
	if err != nil {
		t.Fatalf("HandleDelete error: %v", err)
	}
	out := parseOutput(t, result)
	if out["deleted"] != true {
		t.Errorf("deleted = %v, want true", out["deleted"])
	}

	result, _ = h.HandleDelete(ctx, makeRequest(map[string]any{"id": id}))
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleList(t *testing.T) {
	h, _, _ := testSetup(t)
	ctx := context.Background()
	createPrompt(t, h, "foobar", "plain", false)
	createPrompt(t, h, "other", "contains foo", true)
	createPrompt(t, h, "unrelated", "nothing", true)

	tests := []struct {
		name      string
		args      map[string]any
		wantCount int
		wantSort  string
		errorCode string
	}{
		{name: "all", args: map[string]any{}, wantCount: 3, wantSort: "created_at_desc"},
		{name: "search", args: map[string]any{"search": "FOO"}, wantCount: 2, wantSort: "created_at_desc"},
		{name: "favorites only", args: map[string]any{"favorites_only": true}, wantCount: 2, wantSort: "created_at_desc"},
		{name: "search and favorites", args: map[string]any{"search": "foo", "favorites_only": true}, wantCount: 1, wantSort: "created_at_desc"},
		{name: "sort title asc", args: map[string]any{"sort": "title", "direction": "asc"}, wantCount: 3, wantSort: "title_asc"},
		{name: "limit", args: map[string]any{"limit": 1}, wantCount: 1, wantSort: "created_at_desc"},
		{name: "unknown sort", args: map[string]any{"sort": "rating"}, errorCode: "INVALID_CONFIGURATION"},
		{name: "unknown since", args: map[string]any{"since": "yesterday"}, errorCode: "INVALID_CONFIGURATION"},
		{name: "negative offset", args: map[string]any{"offset": -1}, errorCode: "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleList(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("unexpected Go error: %v", err)
			}
			if tt.errorCode != "" {
				if !result.IsError {
					t.Fatal("expected error result")
				}
				assertErrorCode(t, result, tt.errorCode)
				return
			}
			out := parseOutput(t, result)
			items := out["items"].([]any)
			if len(items) != tt.wantCount {
				t.Errorf("items = %d, want %d", len(items), tt.wantCount)
			}
			if out["sort"] != tt.wantSort {
				t.Errorf("sort = %v, want %s", out["sort"], tt.wantSort)
			}
		})
	}
}

func TestHandleExportImport(t *testing.T) {
	h, _, tmpDir := testSetup(t)
	ctx := context.Background()
	createPrompt(t, h, "one", "first", true)
	createPrompt(t, h, "two", "second", false)

	exportPath := filepath.Join(tmpDir, "out.jsonl")
	result, err := h.HandleExport(ctx, makeRequest(map[string]any{"path": exportPath}))
	if err != nil {
		t.Fatalf("HandleExport error: %v", err)
	}
	out := parseOutput(t, result)
	if out["count"].(float64) != 2 {
		t.Errorf("count = %v, want 2", out["count"])
	}

	h2, _, _ := testSetup(t)
	result, err = h2.HandleImport(ctx, makeRequest(map[string]any{"path": exportPath}))
	if err != nil {
		t.Fatalf("HandleImport error: %v", err)
	}
	out = parseOutput(t, result)
	if out["imported"].(float64) != 2 {
		t.Errorf("imported = %v, want 2", out["imported"])
	}

	result, _ = h2.HandleImport(ctx, makeRequest(map[string]any{"path": filepath.Join(tmpDir, "missing.jsonl")}))
	assertErrorCode(t, result, "FILE_NOT_FOUND")
}

func TestServerRegistration(t *testing.T) {
	_, store, tmpDir := testSetup(t)

	s := NewServer(store, config.DefaultConfig(), tmpDir, "test", nil)
	tools := s.ListTools()
	if len(tools) != len(toolRegistry) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(toolRegistry))
	}
	for _, name := range AllToolNames() {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	_, store, tmpDir := testSetup(t)
	cfg := config.DefaultConfig()
	cfg.DisabledTools = []string{"prompt_delete", "prompt_import", "no_such_tool"}

	s := NewServer(store, cfg, tmpDir, "test", nil)
	tools := s.ListTools()
	if len(tools) != len(toolRegistry)-2 {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(toolRegistry)-2)
	}
	for _, name := range []string{"prompt_delete", "prompt_import"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %s is registered", name)
		}
	}
}

func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"prompt_list", "note_create", "bogus"})
	if len(unknown) != 2 || unknown[0] != "note_create" || unknown[1] != "bogus" {
		t.Errorf("unknown = %v, want [note_create bogus]", unknown)
	}
	if got := ValidateDisabledTools(nil); len(got) != 0 {
		t.Errorf("ValidateDisabledTools(nil) = %v, want empty", got)
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != 8 {
		t.Fatalf("len = %d, want 8", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}
	text := extractErrorMessage(r)

	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"].(map[string]any)
	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if errObj["message"] == "sql error: open /tmp/secret.db: permission denied" {
		t.Fatal("internal message leaked")
	}
}

func TestErrorResult_PlainErrorIsInternal(t *testing.T) {
	assertErrorCode(t, errorResult(fmt.Errorf("boom")), "INTERNAL")
}

func TestErrorResult_WrappedErrorKeepsCode(t *testing.T) {
	r := errorResult(fmt.Errorf("list: %w", errors.NewNotFound(7)))
	assertErrorCode(t, r, "NOT_FOUND")
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	r := errorResult(errors.NewNotFound(7))

	var payload map[string]any
	if err := json.Unmarshal([]byte(extractErrorMessage(r)), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"].(map[string]any)
	if _, ok := errObj["details"]; !ok {
		t.Fatal("expected non-INTERNAL errors to include details when present")
	}
}

func TestPartialErrorResult_CarriesCounts(t *testing.T) {
	r := partialErrorResult(
		errors.NewInternal(fmt.Errorf("disk I/O error")),
		&ops.ImportOutput{Imported: 2, Skipped: 1, Errors: []ops.ImportError{}},
	)
	assertErrorCode(t, r, "INTERNAL")

	var payload map[string]any
	if err := json.Unmarshal([]byte(extractErrorMessage(r)), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	partial, ok := payload["partial"].(map[string]any)
	if !ok {
		t.Fatalf("payload missing partial: %v", payload)
	}
	if partial["imported"] != float64(2) || partial["skipped"] != float64(1) {
		t.Errorf("partial = %v, want imported=2 skipped=1", partial)
	}
	if payload["error"].(map[string]any)["message"] == "disk I/O error" {
		t.Error("internal message leaked")
	}
}

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	var payload map[string]any
	if err := json.Unmarshal([]byte(extractErrorMessage(result)), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}
	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}
	if code, _ := errorObj["code"].(string); code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}
	return text.Text
}
