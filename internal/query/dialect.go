package query

import (
	"strconv"
	"strings"
)

// Dialect is the placeholder style of the target store.
type Dialect int

const (
	// DialectSQLite uses positional "?" placeholders.
	DialectSQLite Dialect = iota
	// DialectPostgres uses numbered "$1, $2, ..." placeholders.
	DialectPostgres
)

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	default:
		return "sqlite"
	}
}

// Rebind rewrites "?" placeholders for the dialect. Question marks inside
// single-quoted literals are left alone.
func (d Dialect) Rebind(q string) string {
	if d != DialectPostgres || !strings.Contains(q, "?") {
		return q
	}

	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(q); i++ {
		c := q[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
