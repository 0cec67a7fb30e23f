package query

import (
	"fmt"
	"strings"
)

// FoldFunc is the SQL function search folds columns with before matching.
// Both backends provide it with full Unicode lowercasing, matching
// strings.ToLower on the term side.
const FoldFunc = "unicode_lower"

type condition struct {
	clause string
	args   []any
}

// SortField represents a single column in an ORDER BY clause.
// Descending controls sort direction (false = ASC, true = DESC).
type SortField struct {
	Column     string `json:"column"`
	Descending bool   `json:"descending"`
}

// Builder collects WHERE conditions and ordering with "?" placeholders.
// Column names passed to Builder must be trusted identifiers; values always
// travel as args.
type Builder struct {
	conditions []condition
	order      []SortField
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{conditions: make([]condition, 0)}
}

// WhereSearch adds a case-insensitive substring match OR-ed across columns.
// The term is trimmed first. No-op for a blank term or no columns.
func (b *Builder) WhereSearch(term string, columns ...string) *Builder {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return b
	}

	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	clauses := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		clauses[i] = fmt.Sprintf(`%s(%s) LIKE ? ESCAPE '\'`, FoldFunc, col)
		args[i] = pattern
	}

	b.conditions = append(b.conditions, condition{
		clause: "(" + strings.Join(clauses, " OR ") + ")",
		args:   args,
	})
	return b
}

// WhereAtLeast adds an inclusive lower bound condition (column >= value).
func (b *Builder) WhereAtLeast(column string, value any) *Builder {
	b.conditions = append(b.conditions, condition{
		clause: column + " >= ?",
		args:   []any{value},
	})
	return b
}

// WhereEquals adds an equality condition.
func (b *Builder) WhereEquals(column string, value any) *Builder {
	b.conditions = append(b.conditions, condition{
		clause: column + " = ?",
		args:   []any{value},
	})
	return b
}

// OrderBy appends ordering fields. Earlier fields take precedence.
func (b *Builder) OrderBy(fields ...SortField) *Builder {
	b.order = append(b.order, fields...)
	return b
}

// Spec freezes the builder into a QuerySpec.
func (b *Builder) Spec() *QuerySpec {
	clauses := make([]string, 0, len(b.conditions))
	args := make([]any, 0)
	for _, cond := range b.conditions {
		clauses = append(clauses, cond.clause)
		args = append(args, cond.args...)
	}

	order := make([]SortField, len(b.order))
	copy(order, b.order)

	return &QuerySpec{
		Predicate: strings.Join(clauses, " AND "),
		Args:      args,
		Order:     order,
	}
}

// escapeLike escapes LIKE wildcards so the term matches literally.
// Pairs with ESCAPE '\' in the clause.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
