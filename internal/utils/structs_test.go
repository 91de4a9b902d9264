package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Stamps struct {
	CreatedAt time.Time `db:"created_at"`
	Display   string    `db:"-"`
}

type row struct {
	ID      string  `db:"id"`
	Name    *string `db:"name"`
	skipped string
	Untag   string
	Stamps
}

func TestStructTagValuesFlattensEmbedded(t *testing.T) {
	assert.Equal(t, []string{"id", "name", "created_at"}, StructTagValues(row{}))
	assert.Equal(t, []string{"id", "name", "created_at"}, StructTagValues(&row{}))
}

func TestStructToMap(t *testing.T) {
	now := time.Now()
	r := &row{ID: "abc", skipped: "x", Stamps: Stamps{CreatedAt: now}}

	m := StructToMap(r)
	require.Len(t, m, 3)
	assert.Equal(t, "abc", m["id"])
	assert.Nil(t, m["name"])
	assert.Equal(t, now, m["created_at"])
}

func TestStructTagValuesPanicsOnNonStruct(t *testing.T) {
	assert.Panics(t, func() { StructTagValues(42) })
}

type state string

type assignRow struct {
	ID     string  `db:"id"`
	Name   *string `db:"name"`
	Status state   `db:"status"`
	Count  int64   `db:"count"`
}

func TestAssignColumns(t *testing.T) {
	r := &assignRow{ID: "a", Name: StringPtr("old"), Status: "Active"}

	err := AssignColumns(r, map[string]any{
		"name":   "new",
		"status": "Inactive",
		"count":  int64(3),
	})
	require.NoError(t, err)

	require.NotNil(t, r.Name)
	assert.Equal(t, "new", *r.Name)
	assert.Equal(t, state("Inactive"), r.Status)
	assert.Equal(t, int64(3), r.Count)

	require.NoError(t, AssignColumns(r, map[string]any{"name": nil}))
	assert.Nil(t, r.Name)

	require.NoError(t, AssignColumns(r, map[string]any{"status": StringPtr("Active")}))
	assert.Equal(t, state("Active"), r.Status)
}

func TestAssignColumnsRejectsMismatch(t *testing.T) {
	r := &assignRow{}
	assert.Error(t, AssignColumns(r, map[string]any{"name": int64(1)}))
	assert.Error(t, AssignColumns(r, map[string]any{"missing": "x"}))
	assert.Error(t, AssignColumns(*r, map[string]any{"id": "x"}))
}
