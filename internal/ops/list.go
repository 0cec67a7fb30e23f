package ops

import (
	"context"

	"github.com/hpungsan/promptbase/internal/config"
	"github.com/hpungsan/promptbase/internal/errors"
	"github.com/hpungsan/promptbase/internal/prompt"
	"github.com/hpungsan/promptbase/internal/query"
)

// ListInput contains parameters for the List operation.
// Empty Sort/Direction fall back to the configured defaults.
type ListInput struct {
	Search        string `json:"search,omitempty"`
	Sort          string `json:"sort,omitempty"`      // created_at | title | body
	Direction     string `json:"direction,omitempty"` // asc | desc
	Since         string `json:"since,omitempty"`     // all | today | this_week | this_month | this_year
	FavoritesOnly bool   `json:"favorites_only,omitempty"`
	Limit         int    `json:"limit,omitempty"` // default: cfg.DefaultListLimit, max: 500
	Offset        int    `json:"offset,omitempty"`
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []prompt.Prompt `json:"items"`
	Pagination Pagination      `json:"pagination"`
	Sort       string          `json:"sort"`
}

// List runs a filtered, sorted read through the query builder.
func List(ctx context.Context, store Store, cfg *config.Config, input ListInput) (*ListOutput, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if input.Offset < 0 {
		return nil, errors.NewInvalidRequest("offset must not be negative")
	}
	if input.Sort == "" {
		input.Sort = cfg.DefaultSort
	}
	if input.Direction == "" {
		input.Direction = cfg.DefaultDirection
	}

	in := query.ReadInput{
		Search:        input.Search,
		Sort:          query.SortKey(input.Sort),
		Direction:     query.Direction(input.Direction),
		Since:         query.DateFilter(input.Since),
		FavoritesOnly: input.FavoritesOnly,
	}
	sel, err := in.Resolve()
	if err != nil {
		return nil, err
	}

	spec, err := query.BuildRead(in, nowFunc())
	if err != nil {
		return nil, err
	}

	limit := cfg.ListLimit(input.Limit)

	items, err := store.Query(ctx, spec, limit, input.Offset)
	if err != nil {
		return nil, err
	}

	total, err := store.Count(ctx, spec)
	if err != nil {
		return nil, err
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  input.Offset,
			HasMore: input.Offset+len(items) < total,
			Total:   total,
		},
		Sort: sel.Label(),
	}, nil
}
