package ops

import (
	"context"

	"github.com/hpungsan/promptbase/internal/prompt"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Favorite bool   `json:"favorite,omitempty"`
}

// Create validates and stores a new prompt. A payload that fails validation
// never reaches the store.
func Create(ctx context.Context, store Store, input CreateInput) (*prompt.Prompt, error) {
	payload, err := prompt.Validate(input.Title, input.Body)
	if err != nil {
		return nil, err
	}

	now := nowFunc().Unix()
	p := &prompt.Prompt{
		Title:      payload.Title,
		Body:       payload.Body,
		IsFavorite: input.Favorite,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := store.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
