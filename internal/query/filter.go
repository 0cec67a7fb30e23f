package query

import (
	"strings"
	"time"

	"github.com/hpungsan/promptbase/internal/errors"
)

// SortKey is the column a read is ordered by.
type SortKey string

const (
	SortCreatedAt SortKey = "created_at"
	SortTitle     SortKey = "title"
	SortBody      SortKey = "body"
)

// SortKeys lists the accepted sort keys.
var SortKeys = []SortKey{SortCreatedAt, SortTitle, SortBody}

// Direction is the ordering direction of a read.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// directionAliases maps accepted spellings to a Direction.
// "newest"/"oldest" are the labels the form has always shown.
var directionAliases = map[string]Direction{
	"asc":        Ascending,
	"ascending":  Ascending,
	"oldest":     Ascending,
	"desc":       Descending,
	"descending": Descending,
	"newest":     Descending,
}

// DateFilter restricts a read to prompts created on or after a calendar bound.
type DateFilter string

const (
	SinceAll       DateFilter = "all"
	SinceToday     DateFilter = "today"
	SinceThisWeek  DateFilter = "this_week"
	SinceThisMonth DateFilter = "this_month"
	SinceThisYear  DateFilter = "this_year"
)

// DateFilters lists the accepted date filters.
var DateFilters = []DateFilter{SinceAll, SinceToday, SinceThisWeek, SinceThisMonth, SinceThisYear}

// Defaults applied when a selection is unset.
const (
	DefaultSortKey    = SortCreatedAt
	DefaultDirection  = Descending
	DefaultDateFilter = SinceAll
)

// ParseSortKey parses a sort key. Empty means unset and yields the default;
// anything else that is not a known key is an INVALID_CONFIGURATION error.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultSortKey, nil
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errors.NewInvalidConfiguration("sort key", s, toStrings(SortKeys))
}

// ParseDirection parses a sort direction. Empty yields the default.
func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultDirection, nil
	}
	if d, ok := directionAliases[s]; ok {
		return d, nil
	}
	return "", errors.NewInvalidConfiguration("sort direction", s, []string{"asc", "desc"})
}

// ParseDateFilter parses a date filter. Empty yields "all".
func ParseDateFilter(s string) (DateFilter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultDateFilter, nil
	}
	for _, f := range DateFilters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.NewInvalidConfiguration("date filter", s, toStrings(DateFilters))
}

// LowerBound returns the inclusive created_at lower bound for the filter,
// evaluated in now's location. Weeks start on Monday. The second result is
// false for SinceAll (no bound).
func (f DateFilter) LowerBound(now time.Time) (time.Time, bool) {
	y, m, d := now.Date()
	loc := now.Location()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch f {
	case SinceToday:
		return midnight, true
	case SinceThisWeek:
		sinceMonday := (int(now.Weekday()) + 6) % 7
		return midnight.AddDate(0, 0, -sinceMonday), true
	case SinceThisMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc), true
	case SinceThisYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc), true
	default:
		return time.Time{}, false
	}
}

// IsDescending reports whether d orders newest/largest first.
func (d Direction) IsDescending() bool {
	return d == Descending
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
