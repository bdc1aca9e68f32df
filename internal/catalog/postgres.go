// internal/catalog/postgres.go
// Direct Postgres reads against the Supabase database

package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// BackendPostgres names the direct database backend in metrics
const BackendPostgres = "postgres"

// PostgresStore executes queries with sqlx. It connects with database credentials,
// so reads bypass row-level security and WithToken is a no-op.
type PostgresStore struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPostgresStore wraps an open pool
func NewPostgresStore(db *sqlx.DB, timeout time.Duration) *PostgresStore {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PostgresStore{db: db, timeout: timeout}
}

// Backend implements Store
func (s *PostgresStore) Backend() string { return BackendPostgres }

// WithToken implements Store
func (s *PostgresStore) WithToken(string) Store { return s }

// Execute implements Store
func (s *PostgresStore) Execute(ctx context.Context, q *Query) ([]Row, error) {
	if q.matchesNothing() {
		if err := q.Validate(); err != nil {
			return nil, err
		}
		return []Row{}, nil
	}

	query, args, err := buildSQL(q)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	rows, err := s.query(ctx, query, args)
	observe(s, q, start, err)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", q.Table, err)
	}
	return rows, nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args []any) ([]Row, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	typeNames := make(map[string]string, len(types))
	for _, ct := range types {
		typeNames[ct.Name()] = ct.DatabaseTypeName()
	}

	out := []Row{}
	for rows.Next() {
		raw := map[string]any{}
		if err := rows.MapScan(raw); err != nil {
			return nil, err
		}
		row := make(Row, len(raw))
		for col, v := range raw {
			row[col] = normalizeValue(typeNames[col], v)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// buildSQL renders q with `?` placeholders, expanding IN lists through sqlx.In
func buildSQL(q *Query) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	if len(q.Columns) == 0 {
		b.WriteString("*")
	} else {
		cols := make([]string, len(q.Columns))
		for i, c := range q.Columns {
			if c == "*" {
				cols[i] = c
				continue
			}
			cols[i] = pq.QuoteIdentifier(c)
		}
		b.WriteString(strings.Join(cols, ", "))
	}
	b.WriteString(" FROM ")
	b.WriteString(pq.QuoteIdentifier(q.Table))

	var args []any
	for i, f := range q.Filters {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(pq.QuoteIdentifier(f.Column))
		switch f.Op {
		case OpEq:
			b.WriteString(" = ?")
			args = append(args, f.Values[0])
		case OpIn:
			b.WriteString(" IN (?)")
			args = append(args, f.Values)
		}
	}

	for i, o := range q.Orders {
		if i == 0 {
			b.WriteString(" ORDER BY ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(pq.QuoteIdentifier(o.Column))
		if o.Desc {
			b.WriteString(" DESC")
		} else {
			b.WriteString(" ASC")
		}
	}

	if q.Max > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.Max))
	}

	return sqlx.In(b.String(), args...)
}

// normalizeValue converts driver values to the shapes PostgREST returns as JSON
func normalizeValue(typeName string, v any) any {
	switch t := v.(type) {
	case []byte:
		switch typeName {
		case "NUMERIC", "DECIMAL":
			if f, err := strconv.ParseFloat(string(t), 64); err == nil {
				return f
			}
			return string(t)
		case "_TEXT", "_VARCHAR", "_UUID", "_BPCHAR":
			var arr pq.StringArray
			if err := arr.Scan(t); err == nil {
				return []string(arr)
			}
			return string(t)
		case "JSON", "JSONB":
			var decoded any
			if err := json.Unmarshal(t, &decoded); err == nil {
				return decoded
			}
			return string(t)
		default:
			return string(t)
		}
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}
