// internal/catalog/query.go
// Backend-neutral read query: table, columns, filters, ordering, limit

package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// Op is a filter operator
type Op string

const (
	OpEq Op = "eq"
	OpIn Op = "in"
)

// Filter is a single column predicate. Eq filters carry exactly one value.
type Filter struct {
	Column string
	Op     Op
	Values []any
}

// Order is one ORDER BY term
type Order struct {
	Column string
	Desc   bool
}

// Query describes a read against one table. Build it with From.
type Query struct {
	Table   string
	Columns []string
	Filters []Filter
	Orders  []Order
	Max     int
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// From starts a query on table
func From(table string) *Query {
	return &Query{Table: table}
}

// Select sets the projected columns. No columns means "*".
func (q *Query) Select(columns ...string) *Query {
	q.Columns = append(q.Columns, columns...)
	return q
}

// Eq adds `column = value`
func (q *Query) Eq(column string, value any) *Query {
	q.Filters = append(q.Filters, Filter{Column: column, Op: OpEq, Values: []any{value}})
	return q
}

// In adds `column IN (values...)`. An empty list matches nothing.
func (q *Query) In(column string, values []string) *Query {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	q.Filters = append(q.Filters, Filter{Column: column, Op: OpIn, Values: vals})
	return q
}

// Order appends an ordering term
func (q *Query) Order(column string, desc bool) *Query {
	q.Orders = append(q.Orders, Order{Column: column, Desc: desc})
	return q
}

// Limit caps the number of returned rows; zero means no cap
func (q *Query) Limit(n int) *Query {
	q.Max = n
	return q
}

// Validate checks every identifier in the query
func (q *Query) Validate() error {
	if !identifierPattern.MatchString(q.Table) {
		return fmt.Errorf("%w: table %q", ErrInvalidIdentifier, q.Table)
	}
	for _, c := range q.Columns {
		if c != "*" && !identifierPattern.MatchString(c) {
			return fmt.Errorf("%w: column %q", ErrInvalidIdentifier, c)
		}
	}
	for _, f := range q.Filters {
		if !identifierPattern.MatchString(f.Column) {
			return fmt.Errorf("%w: filter column %q", ErrInvalidIdentifier, f.Column)
		}
		if f.Op != OpEq && f.Op != OpIn {
			return fmt.Errorf("%w: operator %q", ErrInvalidQuery, f.Op)
		}
	}
	for _, o := range q.Orders {
		if !identifierPattern.MatchString(o.Column) {
			return fmt.Errorf("%w: order column %q", ErrInvalidIdentifier, o.Column)
		}
	}
	if q.Max < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrInvalidQuery, q.Max)
	}
	return nil
}

// matchesNothing is true when an IN filter has an empty value list
func (q *Query) matchesNothing() bool {
	for _, f := range q.Filters {
		if f.Op == OpIn && len(f.Values) == 0 {
			return true
		}
	}
	return false
}

func (q *Query) selectList() string {
	if len(q.Columns) == 0 {
		return "*"
	}
	return strings.Join(q.Columns, ",")
}

func (q *Query) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(%s)", q.Table, q.selectList())
	for _, f := range q.Filters {
		fmt.Fprintf(&b, " %s.%s%v", f.Column, f.Op, f.Values)
	}
	if q.Max > 0 {
		fmt.Fprintf(&b, " limit %d", q.Max)
	}
	return b.String()
}
