package mcp

import "github.com/mark3labs/mcp-go/mcp"

var createToolDef = mcp.NewTool("prompt_create",
	mcp.WithDescription("Store a new prompt. Title and body must both contain non-whitespace text."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Short label for the prompt")),
	mcp.WithString("body", mcp.Required(), mcp.Description("The prompt text")),
	mcp.WithBoolean("favorite", mcp.Description("Mark as favorite on creation")),
)

var getToolDef = mcp.NewTool("prompt_get",
	mcp.WithDescription("Fetch one prompt by id."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Prompt id")),
)

var updateToolDef = mcp.NewTool("prompt_update",
	mcp.WithDescription("Replace the title and body of a prompt. The favorite flag is left alone."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Prompt id")),
	mcp.WithString("title", mcp.Required(), mcp.Description("New title")),
	mcp.WithString("body", mcp.Required(), mcp.Description("New body")),
)

var favoriteToolDef = mcp.NewTool("prompt_favorite",
	mcp.WithDescription("Set or toggle the favorite flag. Omit value to toggle."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Prompt id")),
	mcp.WithBoolean("value", mcp.Description("Explicit flag value")),
)

var deleteToolDef = mcp.NewTool("prompt_delete",
	mcp.WithDescription("Permanently delete a prompt."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Prompt id")),
)

var listToolDef = mcp.NewTool("prompt_list",
	mcp.WithDescription("List prompts with optional search, favorites-only and date filters, sorted by one column."),
	mcp.WithString("search", mcp.Description("Case-insensitive substring matched against title and body")),
	mcp.WithString("sort", mcp.Description("Sort column"), mcp.Enum("created_at", "title", "body")),
	mcp.WithString("direction", mcp.Description("Sort direction"), mcp.Enum("asc", "desc")),
	mcp.WithString("since", mcp.Description("Date filter on created_at"),
		mcp.Enum("all", "today", "this_week", "this_month", "this_year")),
	mcp.WithBoolean("favorites_only", mcp.Description("Only favorites")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 50, max 500)")),
	mcp.WithNumber("offset", mcp.Description("Rows to skip")),
)

var exportToolDef = mcp.NewTool("prompt_export",
	mcp.WithDescription("Write every prompt to a JSONL file."),
	mcp.WithString("path", mcp.Description("Destination .jsonl path (default: exports directory)")),
)

var importToolDef = mcp.NewTool("prompt_import",
	mcp.WithDescription("Insert every record from a JSONL export as a new prompt."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Source .jsonl path")),
)
