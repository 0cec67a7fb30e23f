package ops

import (
	"context"

	"github.com/hpungsan/promptbase/internal/prompt"
)

// UpdateInput contains parameters for the Update operation.
// Both fields are replaced; favorite state is untouched.
type UpdateInput struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Update replaces a prompt's title and body. Validation runs first, so a
// rejected edit leaves the stored record as it was.
func Update(ctx context.Context, store Store, input UpdateInput) (*prompt.Prompt, error) {
	if err := validateID(input.ID); err != nil {
		return nil, err
	}

	payload, err := prompt.Validate(input.Title, input.Body)
	if err != nil {
		return nil, err
	}

	return store.UpdateContent(ctx, input.ID, payload.Title, payload.Body, nowFunc().Unix())
}
