package query

import "time"

// Column names the read query may reference.
const (
	ColumnID         = "id"
	ColumnTitle      = "title"
	ColumnBody       = "body"
	ColumnIsFavorite = "is_favorite"
	ColumnCreatedAt  = "created_at"
)

// ReadInput is the user's current filter/sort selection.
// Empty Sort, Direction and Since mean "unset" and take their defaults.
type ReadInput struct {
	Search        string
	Sort          SortKey
	Direction     Direction
	Since         DateFilter
	FavoritesOnly bool
}

// Selection is a ReadInput with every option resolved.
type Selection struct {
	Search        string
	Sort          SortKey
	Direction     Direction
	Since         DateFilter
	FavoritesOnly bool
}

// Label returns the "<key>_<dir>" label reported alongside list results.
func (s Selection) Label() string {
	return string(s.Sort) + "_" + string(s.Direction)
}

// Resolve validates the selection and applies defaults for unset options.
// Unrecognized values fail with INVALID_CONFIGURATION.
func (in ReadInput) Resolve() (Selection, error) {
	sort, err := ParseSortKey(string(in.Sort))
	if err != nil {
		return Selection{}, err
	}
	dir, err := ParseDirection(string(in.Direction))
	if err != nil {
		return Selection{}, err
	}
	since, err := ParseDateFilter(string(in.Since))
	if err != nil {
		return Selection{}, err
	}
	return Selection{
		Search:        in.Search,
		Sort:          sort,
		Direction:     dir,
		Since:         since,
		FavoritesOnly: in.FavoritesOnly,
	}, nil
}

// BuildRead turns a filter/sort selection into a parameterized QuerySpec.
// now is only used to compute date filter bounds. Ties on the sort column are
// broken by id in the same direction, so asc and desc are exact reverses.
func BuildRead(in ReadInput, now time.Time) (*QuerySpec, error) {
	sel, err := in.Resolve()
	if err != nil {
		return nil, err
	}

	b := NewBuilder().WhereSearch(sel.Search, ColumnTitle, ColumnBody)

	if bound, ok := sel.Since.LowerBound(now); ok {
		b.WhereAtLeast(ColumnCreatedAt, bound.Unix())
	}
	if sel.FavoritesOnly {
		b.WhereEquals(ColumnIsFavorite, true)
	}

	desc := sel.Direction.IsDescending()
	b.OrderBy(
		SortField{Column: string(sel.Sort), Descending: desc},
		SortField{Column: ColumnID, Descending: desc},
	)

	return b.Spec(), nil
}
