// Package query builds parameterized read queries for the prompts table.
package query

import (
	"fmt"
	"strings"
)

// QuerySpec describes a read: the conjunction of active predicates, the bound
// values for its placeholders, and the ordering. Predicate never contains a
// user-supplied value; those live only in Args.
type QuerySpec struct {
	Predicate string      `json:"predicate"`
	Args      []any       `json:"args"`
	Order     []SortField `json:"order"`
}

// Where returns " WHERE <predicate>", or "" when there are no conditions.
func (s *QuerySpec) Where() string {
	if s.Predicate == "" {
		return ""
	}
	return " WHERE " + s.Predicate
}

// OrderBy returns " ORDER BY ...", or "" when no ordering is set.
func (s *QuerySpec) OrderBy() string {
	if len(s.Order) == 0 {
		return ""
	}
	parts := make([]string, len(s.Order))
	for i, f := range s.Order {
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		parts[i] = fmt.Sprintf("%s %s", f.Column, dir)
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// SelectSQL returns the full SELECT for the spec.
func (s *QuerySpec) SelectSQL(d Dialect, table string, columns []string) (string, []any) {
	q := fmt.Sprintf("SELECT %s FROM %s%s%s",
		strings.Join(columns, ", "), table, s.Where(), s.OrderBy())
	return d.Rebind(q), s.args()
}

// CountSQL returns a COUNT(*) over the spec's predicate.
func (s *QuerySpec) CountSQL(d Dialect, table string) (string, []any) {
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", table, s.Where())
	return d.Rebind(q), s.args()
}

// PageSQL returns a SELECT with LIMIT and OFFSET bound as parameters.
func (s *QuerySpec) PageSQL(d Dialect, table string, columns []string, limit, offset int) (string, []any) {
	q := fmt.Sprintf("SELECT %s FROM %s%s%s LIMIT ? OFFSET ?",
		strings.Join(columns, ", "), table, s.Where(), s.OrderBy())
	args := append(s.args(), limit, offset)
	return d.Rebind(q), args
}

// args returns a copy so callers can append without aliasing the spec.
func (s *QuerySpec) args() []any {
	out := make([]any, len(s.Args))
	copy(out, s.Args)
	return out
}
