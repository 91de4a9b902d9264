package store

import (
	"sort"
	"strings"
)

// Columns is the set of column values an edit request supplied. Statements
// are built from it, so an UPDATE only touches what the request carried.
type Columns struct {
	values map[string]any
}

func NewColumns() *Columns {
	return &Columns{values: make(map[string]any)}
}

func (c *Columns) Set(column string, value any) *Columns {
	c.values[column] = value
	return c
}

func (c *Columns) SetIf(ok bool, column string, value any) *Columns {
	if ok {
		c.values[column] = value
	}
	return c
}

// SetString sets the column only for a non-blank value.
func (c *Columns) SetString(column, value string) *Columns {
	value = strings.TrimSpace(value)
	return c.SetIf(value != "", column, value)
}

// SetPtr sets the column when value was supplied. A supplied blank string
// clears the column.
func (c *Columns) SetPtr(column string, value *string) *Columns {
	if value == nil {
		return c
	}
	if v := strings.TrimSpace(*value); v != "" {
		return c.Set(column, v)
	}
	return c.Set(column, nil)
}

// Merge adds every entry of values, typically the fresh asset URLs of a
// pipeline run.
func (c *Columns) Merge(values map[string]string) *Columns {
	for column, value := range values {
		c.values[column] = value
	}
	return c
}

func (c *Columns) Has(column string) bool {
	_, ok := c.values[column]
	return ok
}

func (c *Columns) Get(column string) (any, bool) {
	v, ok := c.values[column]
	return v, ok
}

func (c *Columns) Len() int {
	return len(c.values)
}

// Names returns the column names in sorted order.
func (c *Columns) Names() []string {
	names := make([]string, 0, len(c.values))
	for name := range c.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Columns) Map() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Toggle describes a two-valued string column.
type Toggle struct {
	Column string
	On     string
	Off    string
}

var (
	StatusToggle    = Toggle{Column: "status", On: "Active", Off: "Inactive"}
	LoginToggle     = Toggle{Column: "loginstatus", On: "Active", Off: "Inactive"}
	HotDealToggle   = Toggle{Column: "hot_deal", On: "True", Off: "False"}
	HighlightToggle = Toggle{Column: "highlight", On: "True", Off: "False"}
)

// Flip returns the value following current.
func (t Toggle) Flip(current string) string {
	if current == t.On {
		return t.Off
	}
	return t.On
}
