package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/reparvservices/reparv-server-sub002/internal/utils"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

// MemTable is an in-process Table for service tests. Where clauses are
// limited to sq.Eq, sq.NotEq, sq.And and sq.Or.
type MemTable[T any] struct {
	mu       sync.Mutex
	name     string
	rows     []*T
	unique   [][]string
	notFound error
	now      func() time.Time
	failNext error
}

func NewMemTable[T any](name string, notFound error) *MemTable[T] {
	return &MemTable[T]{name: name, notFound: notFound, now: time.Now}
}

func (m *MemTable[T]) Name() string { return m.name }

// Unique declares a column set that Insert keeps unique, as the schema does.
func (m *MemTable[T]) Unique(columns ...string) *MemTable[T] {
	m.unique = append(m.unique, columns)
	return m
}

// FailNext makes the next write call return err.
func (m *MemTable[T]) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

func (m *MemTable[T]) takeFailure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *MemTable[T]) Get(ctx context.Context, id string) (*T, error) {
	return m.Find(ctx, sq.Eq{"id": id})
}

func (m *MemTable[T]) Find(_ context.Context, where sq.Sqlizer) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.match(where)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, m.notFound
	}

	c := *rows[0]
	return &c, nil
}

func (m *MemTable[T]) List(_ context.Context, where sq.Sqlizer) ([]*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.match(where)
	if err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(rows))
	for _, r := range rows {
		c := *r
		out = append(out, &c)
	}
	return out, nil
}

func (m *MemTable[T]) Exists(_ context.Context, where sq.Sqlizer) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.match(where)
	return len(rows) > 0, err
}

func (m *MemTable[T]) Insert(_ context.Context, row *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(); err != nil {
		return err
	}

	values := utils.StructToMap(row)
	for _, cols := range m.unique {
		for _, existing := range m.rows {
			if sameColumns(values, utils.StructToMap(existing), cols) {
				return fmt.Errorf("failed to insert %s: %w: %s", m.name, types.ErrDuplicate, strings.Join(cols, "_"))
			}
		}
	}

	c := *row
	m.rows = append(m.rows, &c)
	return nil
}

func (m *MemTable[T]) Update(_ context.Context, id string, cols *Columns) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(); err != nil {
		return err
	}

	row := m.byID(id)
	if row == nil {
		return m.notFound
	}

	values := cols.Map()
	values["updated_at"] = m.now()
	return utils.AssignColumns(row, values)
}

func (m *MemTable[T]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(); err != nil {
		return err
	}

	for i, r := range m.rows {
		if fmt.Sprint(utils.StructToMap(r)["id"]) == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return m.notFound
}

func (m *MemTable[T]) Toggle(_ context.Context, id string, tg Toggle) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(); err != nil {
		return "", err
	}

	row := m.byID(id)
	if row == nil {
		return "", m.notFound
	}

	next := tg.Flip(fmt.Sprint(deref(utils.StructToMap(row)[tg.Column])))
	err := utils.AssignColumns(row, map[string]any{tg.Column: next, "updated_at": m.now()})
	return next, err
}

// Len reports the number of stored rows.
func (m *MemTable[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *MemTable[T]) byID(id string) *T {
	for _, r := range m.rows {
		if fmt.Sprint(utils.StructToMap(r)["id"]) == id {
			return r
		}
	}
	return nil
}

// match returns the rows satisfying where, newest first.
func (m *MemTable[T]) match(where sq.Sqlizer) ([]*T, error) {
	var out []*T
	for _, r := range m.rows {
		ok, err := evaluate(where, utils.StructToMap(r))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}

	order := make(map[*T]int, len(m.rows))
	for i, r := range m.rows {
		order[r] = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, _ := utils.StructToMap(out[i])["created_at"].(time.Time)
		cj, _ := utils.StructToMap(out[j])["created_at"].(time.Time)
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return order[out[i]] > order[out[j]]
	})

	return out, nil
}

func evaluate(where sq.Sqlizer, row map[string]any) (bool, error) {
	switch w := where.(type) {
	case nil:
		return true, nil
	case sq.Eq:
		for column, want := range w {
			if !matches(row, column, want) {
				return false, nil
			}
		}
		return true, nil
	case sq.NotEq:
		for column, want := range w {
			if matches(row, column, want) {
				return false, nil
			}
		}
		return true, nil
	case sq.And:
		for _, part := range w {
			ok, err := evaluate(part, row)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case sq.Or:
		for _, part := range w {
			ok, err := evaluate(part, row)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("memtable: unsupported condition %T", where)
	}
}

func matches(row map[string]any, column string, want any) bool {
	if i := strings.LastIndex(column, "."); i >= 0 {
		column = column[i+1:]
	}

	got := deref(row[column])

	rv := reflect.ValueOf(want)
	if want != nil && rv.Kind() == reflect.Slice {
		for i := 0; i < rv.Len(); i++ {
			if equalValues(got, deref(rv.Index(i).Interface())) {
				return true
			}
		}
		return false
	}

	return equalValues(got, deref(want))
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func deref(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		return rv.Elem().Interface()
	}
	return v
}

func sameColumns(a, b map[string]any, columns []string) bool {
	for _, c := range columns {
		av, bv := deref(a[c]), deref(b[c])
		if av == nil || bv == nil || !equalValues(av, bv) {
			return false
		}
	}
	return true
}
