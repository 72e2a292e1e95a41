package dataset

import "fmt"

// Column is a named, typed sequence of cells. Columns are immutable once built;
// operations produce new columns instead of editing existing ones.
type Column struct {
	name   string
	kind   Kind
	values []Value
}

// NewColumn copies values into a new column after checking that every present
// value carries the declared kind.
func NewColumn(name string, kind Kind, values []Value) (*Column, error) {
	for i, v := range values {
		if v.IsMissing() {
			continue
		}
		if v.Kind() != kind {
			return nil, fmt.Errorf("column %q row %d: %s value in %s column", name, i, v.Kind(), kind)
		}
	}
	cp := make([]Value, len(values))
	copy(cp, values)
	return &Column{name: name, kind: kind, values: cp}, nil
}

// MustColumn is NewColumn for literals known to be well-typed (tests, fixtures).
func MustColumn(name string, kind Kind, values ...Value) *Column {
	c, err := NewColumn(name, kind, values)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }
func (c *Column) Len() int     { return len(c.values) }

// Value returns the cell at row i.
func (c *Column) Value(i int) Value { return c.values[i] }

// Values returns a copy of the cells.
func (c *Column) Values() []Value {
	cp := make([]Value, len(c.values))
	copy(cp, c.values)
	return cp
}

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.values {
		if v.IsMissing() {
			n++
		}
	}
	return n
}

// Distinct returns the present values in order of first appearance.
func (c *Column) Distinct() []Value {
	seen := make(map[string]struct{})
	var out []Value
	for _, v := range c.values {
		if v.IsMissing() {
			continue
		}
		k := v.String()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Rename returns the same cells under a new name.
func (c *Column) Rename(name string) *Column {
	return &Column{name: name, kind: c.kind, values: c.values}
}

// Take returns a column holding the rows at the given indices, in that order.
func (c *Column) Take(rows []int) *Column {
	out := make([]Value, len(rows))
	for i, r := range rows {
		out[i] = c.values[r]
	}
	return &Column{name: c.name, kind: c.kind, values: out}
}

// AsText returns the column re-typed as text, rendering every present value.
func (c *Column) AsText() *Column {
	out := make([]Value, len(c.values))
	for i, v := range c.values {
		if v.IsMissing() {
			continue
		}
		out[i] = Text(v.String())
	}
	return &Column{name: c.name, kind: KindText, values: out}
}

// Equal compares name, kind and every cell.
func (c *Column) Equal(o *Column) bool {
	if c.name != o.name || c.kind != o.kind || len(c.values) != len(o.values) {
		return false
	}
	for i := range c.values {
		if !c.values[i].Equal(o.values[i]) {
			return false
		}
	}
	return true
}
