package ops

import (
	"context"

	"github.com/hpungsan/promptbase/internal/prompt"
)

// FavoriteInput contains parameters for the Favorite operation.
type FavoriteInput struct {
	ID int64 `json:"id"`
	// Value sets the flag explicitly; nil toggles it.
	Value *bool `json:"value,omitempty"`
}

// Favorite sets or toggles the favorite flag and returns the updated prompt.
func Favorite(ctx context.Context, store Store, input FavoriteInput) (*prompt.Prompt, error) {
	if err := validateID(input.ID); err != nil {
		return nil, err
	}

	now := nowFunc().Unix()
	if input.Value == nil {
		return store.ToggleFavorite(ctx, input.ID, now)
	}
	return store.SetFavorite(ctx, input.ID, *input.Value, now)
}
