package recommendations

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/faycalhabibahmatalbachar/gba/internal/catalog"
)

// memStore evaluates catalog queries over in-memory tables
type memStore struct {
	mu      sync.Mutex
	tables  map[string][]catalog.Row
	fail    func(q *catalog.Query) error
	queries []*catalog.Query
	tokens  []string
	token   string
}

func newMemStore() *memStore {
	return &memStore{tables: map[string][]catalog.Row{}}
}

func (s *memStore) insert(table string, rows ...catalog.Row) *memStore {
	s.tables[table] = append(s.tables[table], rows...)
	return s
}

func (s *memStore) Backend() string { return "memory" }

func (s *memStore) WithToken(token string) catalog.Store {
	return &tokenView{memStore: s, token: token}
}

func (s *memStore) Execute(ctx context.Context, q *catalog.Query) ([]catalog.Row, error) {
	return s.execute(ctx, q, "")
}

func (s *memStore) execute(ctx context.Context, q *catalog.Query, token string) ([]catalog.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries = append(s.queries, q)
	s.tokens = append(s.tokens, token)
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.fail != nil {
		if err := s.fail(q); err != nil {
			return nil, err
		}
	}

	var out []catalog.Row
	for _, row := range s.tables[q.Table] {
		if matches(row, q) {
			out = append(out, project(row, q.Columns))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		for _, o := range q.Orders {
			a, _ := out[i].Float(o.Column)
			b, _ := out[j].Float(o.Column)
			if a == b {
				continue
			}
			if o.Desc {
				return a > b
			}
			return a < b
		}
		return false
	})

	if q.Max > 0 && len(out) > q.Max {
		out = out[:q.Max]
	}
	if out == nil {
		out = []catalog.Row{}
	}
	return out, nil
}

func (s *memStore) queriesOn(table string) []*catalog.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*catalog.Query
	for _, q := range s.queries {
		if q.Table == table {
			out = append(out, q)
		}
	}
	return out
}

type tokenView struct {
	*memStore
	token string
}

func (v *tokenView) Execute(ctx context.Context, q *catalog.Query) ([]catalog.Row, error) {
	return v.memStore.execute(ctx, q, v.token)
}

func matches(row catalog.Row, q *catalog.Query) bool {
	for _, f := range q.Filters {
		v, ok := row[f.Column]
		if !ok || v == nil {
			return false
		}
		got := fmt.Sprint(v)
		hit := false
		for _, want := range f.Values {
			if got == fmt.Sprint(want) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func project(row catalog.Row, columns []string) catalog.Row {
	if len(columns) == 0 || (len(columns) == 1 && columns[0] == "*") {
		cp := make(catalog.Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		return cp
	}
	cp := make(catalog.Row, len(columns))
	for _, c := range columns {
		if v, ok := row[c]; ok {
			cp[c] = v
		}
	}
	return cp
}

// failTable fails every query against table
func failTable(table string) func(q *catalog.Query) error {
	return func(q *catalog.Query) error {
		if q.Table == table {
			return fmt.Errorf("%s unavailable", table)
		}
		return nil
	}
}
