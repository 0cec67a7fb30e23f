package prompt

// ExportRecord represents a prompt record in JSONL export format.
// It is used for parsing export files during import.
type ExportRecord struct {
	// Header detection field - true only for header line
	PromptbaseExport bool `json:"_promptbase_export,omitempty"`

	// Header fields (only present in header line)
	SchemaVersion string `json:"schema_version,omitempty"`
	ExportedAt    int64  `json:"exported_at,omitempty"`

	// Prompt fields
	ID         int64  `json:"id,omitempty"` // IGNORED on import, store assigns a new one
	Title      string `json:"title,omitempty"`
	Body       string `json:"body,omitempty"`
	IsFavorite bool   `json:"is_favorite,omitempty"`
	CreatedAt  int64  `json:"created_at,omitempty"`
	UpdatedAt  int64  `json:"updated_at,omitempty"`
}

// ToPrompt converts an ExportRecord to a Prompt. ID is left zero.
func (r *ExportRecord) ToPrompt() *Prompt {
	p := &Prompt{
		Title:      r.Title,
		Body:       r.Body,
		IsFavorite: r.IsFavorite,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if p.UpdatedAt < p.CreatedAt {
		p.UpdatedAt = p.CreatedAt
	}
	return p
}

// ToExportRecord converts a Prompt to an ExportRecord for export.
func ToExportRecord(p *Prompt) *ExportRecord {
	return &ExportRecord{
		ID:         p.ID,
		Title:      p.Title,
		Body:       p.Body,
		IsFavorite: p.IsFavorite,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
