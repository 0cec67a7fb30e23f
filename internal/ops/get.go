package ops

import (
	"context"

	"github.com/hpungsan/promptbase/internal/prompt"
)

// Get retrieves a single prompt by id.
func Get(ctx context.Context, store Store, id int64) (*prompt.Prompt, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return store.GetByID(ctx, id)
}
