package ops

import (
	"context"
	"time"

	"github.com/hpungsan/promptbase/internal/errors"
	"github.com/hpungsan/promptbase/internal/prompt"
	"github.com/hpungsan/promptbase/internal/query"
)

// Store is the persistence the operations need. *db.Store satisfies it.
type Store interface {
	Insert(ctx context.Context, p *prompt.Prompt) error
	GetByID(ctx context.Context, id int64) (*prompt.Prompt, error)
	UpdateContent(ctx context.Context, id int64, title, body string, now int64) (*prompt.Prompt, error)
	SetFavorite(ctx context.Context, id int64, value bool, now int64) (*prompt.Prompt, error)
	ToggleFavorite(ctx context.Context, id int64, now int64) (*prompt.Prompt, error)
	Delete(ctx context.Context, id int64) error
	Query(ctx context.Context, spec *query.QuerySpec, limit, offset int) ([]prompt.Prompt, error)
	Count(ctx context.Context, spec *query.QuerySpec) (int, error)
	StreamAll(ctx context.Context, fn func(*prompt.Prompt) error) error
}

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// nowFunc is the clock for timestamps and date filters. Tests replace it.
var nowFunc = time.Now

// validateID rejects ids the store can never have assigned.
func validateID(id int64) error {
	if id <= 0 {
		return errors.NewInvalidRequest("id must be a positive integer")
	}
	return nil
}
