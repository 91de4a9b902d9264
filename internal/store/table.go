package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/reparvservices/reparv-server-sub002/internal/utils"
)

// Table is the CRUD repository shared by every row type. T must be a struct
// tagged with db column names, with an "id" primary key and timestamps.
type Table[T any] struct {
	db       DB
	name     string
	columns  []string
	notFound error
	now      func() time.Time
}

func NewTable[T any](db DB, name string, notFound error) *Table[T] {
	var zero T
	return &Table[T]{
		db:       db,
		name:     name,
		columns:  utils.StructTagValues(zero),
		notFound: notFound,
		now:      time.Now,
	}
}

func (t *Table[T]) Name() string { return t.name }

func (t *Table[T]) Columns() []string { return t.columns }

// WithDB returns a copy of the table bound to db, usually a transaction.
func (t *Table[T]) WithDB(db DB) *Table[T] {
	c := *t
	c.db = db
	return &c
}

func (t *Table[T]) selectQuery(where sq.Sqlizer) sq.SelectBuilder {
	b := psql().Select(t.columns...).From(t.name)
	if where != nil {
		b = b.Where(where)
	}
	return b
}

func (t *Table[T]) Get(ctx context.Context, id string) (*T, error) {
	return t.Find(ctx, sq.Eq{"id": id})
}

// Find returns the newest row matching where.
func (t *Table[T]) Find(ctx context.Context, where sq.Sqlizer) (*T, error) {
	query, args, err := t.selectQuery(where).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s query: %w", t.name, err)
	}

	var row = new(T)
	err = pgxscan.Get(ctx, t.db, row, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, t.notFound
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", t.name, err)
	}

	return row, nil
}

// List returns the rows matching where, newest first. A nil where lists all.
func (t *Table[T]) List(ctx context.Context, where sq.Sqlizer) ([]*T, error) {
	query, args, err := t.selectQuery(where).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s list query: %w", t.name, err)
	}

	var rows = make([]*T, 0)
	err = pgxscan.Select(ctx, t.db, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.name, err)
	}

	return rows, nil
}

func (t *Table[T]) Exists(ctx context.Context, where sq.Sqlizer) (bool, error) {
	sub, args, err := psql().Select("1").From(t.name).Where(where).Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate %s exists query: %w", t.name, err)
	}

	var exists bool
	err = t.db.QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", t.name, err)
	}

	return exists, nil
}

// Insert writes every tagged column of row. Callers set the id and
// timestamps.
func (t *Table[T]) Insert(ctx context.Context, row *T) error {
	query, args, err := psql().Insert(t.name).SetMap(utils.StructToMap(row)).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert %s query: %w", t.name, err)
	}

	_, err = t.db.Exec(ctx, query, args...)
	return mapError(err, "failed to insert "+t.name)
}

// Update writes cols to the row and bumps updated_at.
func (t *Table[T]) Update(ctx context.Context, id string, cols *Columns) error {
	values := cols.Map()
	values["updated_at"] = t.now()

	query, args, err := psql().Update(t.name).SetMap(values).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update %s query for %s: %w", t.name, id, err)
	}

	tag, err := t.db.Exec(ctx, query, args...)
	if err != nil {
		return mapError(err, "failed to update "+t.name)
	}

	if tag.RowsAffected() == 0 {
		return t.notFound
	}

	return nil
}

func (t *Table[T]) Delete(ctx context.Context, id string) error {
	query, args, err := psql().Delete(t.name).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete %s query for %s: %w", t.name, id, err)
	}

	tag, err := t.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", t.name, err)
	}

	if tag.RowsAffected() == 0 {
		return t.notFound
	}

	return nil
}

// Toggle flips a two-valued column in one statement and returns the value
// it now holds.
func (t *Table[T]) Toggle(ctx context.Context, id string, tg Toggle) (string, error) {
	query, args, err := toggleQuery(t.name, id, tg, t.now()).ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to generate toggle %s query: %w", t.name, err)
	}

	var value string
	err = pgxscan.Get(ctx, t.db, &value, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return "", t.notFound
		}
		return "", fmt.Errorf("failed to toggle %s on %s: %w", tg.Column, t.name, err)
	}

	return value, nil
}

func toggleQuery(table, id string, tg Toggle, now time.Time) sq.UpdateBuilder {
	return psql().Update(table).
		Set(tg.Column, sq.Expr(fmt.Sprintf("CASE WHEN %s = ? THEN ? ELSE ? END", tg.Column), tg.On, tg.Off, tg.On)).
		Set("updated_at", now).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + tg.Column)
}
