package prompt

// Prompt is a stored title + body record.
type Prompt struct {
	// ID is assigned by the store on creation and never changes
	ID int64 `json:"id"`

	// Title is a short human-readable label (never empty)
	Title string `json:"title"`

	// Body is the prompt content itself (never empty)
	Body string `json:"body"`

	// IsFavorite is toggled independently of edits
	IsFavorite bool `json:"is_favorite"`

	// CreatedAt is the Unix timestamp when the prompt was created
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp of the last edit or favorite change
	UpdatedAt int64 `json:"updated_at"`
}

// Columns lists the prompts table columns in scan order.
var Columns = []string{"id", "title", "body", "is_favorite", "created_at", "updated_at"}

// Table is the name of the prompts table.
const Table = "prompts"
