package dataset

import (
	"fmt"
	"strings"
)

// Dataset is an ordered set of equally long, uniquely named columns.
type Dataset struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New builds a dataset from columns, enforcing unique names and a single row
// count taken from the first column.
func New(cols ...*Column) (*Dataset, error) {
	rows := 0
	if len(cols) > 0 && cols[0] != nil {
		rows = cols[0].Len()
	}
	return NewSized(rows, cols...)
}

// NewSized is New with an explicit row count, which is what keeps the row
// count of a dataset whose last column was dropped.
func NewSized(rows int, cols ...*Column) (*Dataset, error) {
	d := &Dataset{cols: make([]*Column, 0, len(cols)), index: make(map[string]int, len(cols)), rows: rows}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := d.index[c.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrNameCollision, c.Name())
		}
		if c.Len() != rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name(), c.Len(), rows)
		}
		d.index[c.Name()] = i
		d.cols = append(d.cols, c)
	}
	return d, nil
}

// MustNew is New for fixtures.
func MustNew(cols ...*Column) *Dataset {
	d, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return d
}

// Empty returns a dataset with no columns and no rows.
func Empty() *Dataset { return MustNew() }

func (d *Dataset) NumRows() int { return d.rows }
func (d *Dataset) NumCols() int { return len(d.cols) }

// Names returns the column names in display order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Name()
	}
	return out
}

// Columns returns the columns in display order. The slice is a copy; the
// columns themselves are immutable.
func (d *Dataset) Columns() []*Column {
	out := make([]*Column, len(d.cols))
	copy(out, d.cols)
	return out
}

// Column looks a column up by name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.cols[i], true
}

// ColumnAt returns the i-th column.
func (d *Dataset) ColumnAt(i int) *Column { return d.cols[i] }

// IndexOf returns the position of a column, or -1.
func (d *Dataset) IndexOf(name string) int {
	if i, ok := d.index[name]; ok {
		return i
	}
	return -1
}

// Lookup returns the named column or an OpError wrapping ErrUnknownColumn.
func (d *Dataset) Lookup(op, name string) (*Column, error) {
	c, ok := d.Column(name)
	if !ok {
		return nil, &OpError{Op: op, Column: name, Err: ErrUnknownColumn}
	}
	return c, nil
}

// Row returns the cells of row r in column order.
func (d *Dataset) Row(r int) []Value {
	out := make([]Value, len(d.cols))
	for j, c := range d.cols {
		out[j] = c.Value(r)
	}
	return out
}

// RowStrings renders row r, missing cells as "".
func (d *Dataset) RowStrings(r int) []string {
	out := make([]string, len(d.cols))
	for j, c := range d.cols {
		out[j] = c.Value(r).String()
	}
	return out
}

// MissingCount returns the number of missing cells across all columns.
func (d *Dataset) MissingCount() int {
	n := 0
	for _, c := range d.cols {
		n += c.MissingCount()
	}
	return n
}

// WithColumn returns a dataset where the column named like c is replaced by c.
// The position of the replaced column is kept.
func (d *Dataset) WithColumn(c *Column) (*Dataset, error) {
	i, ok := d.index[c.Name()]
	if !ok {
		return nil, &OpError{Op: "replace", Column: c.Name(), Err: ErrUnknownColumn}
	}
	cols := d.Columns()
	cols[i] = c
	return NewSized(d.rows, cols...)
}

// Take returns the rows at the given indices, in that order.
func (d *Dataset) Take(rows []int) *Dataset {
	cols := make([]*Column, len(d.cols))
	for j, c := range d.cols {
		cols[j] = c.Take(rows)
	}
	out, err := NewSized(len(rows), cols...)
	if err != nil {
		panic(err)
	}
	return out
}

// Head returns the first n rows.
func (d *Dataset) Head(n int) *Dataset {
	if n > d.rows {
		n = d.rows
	}
	if n < 0 {
		n = 0
	}
	return d.Take(seq(0, n))
}

// Tail returns the last n rows.
func (d *Dataset) Tail(n int) *Dataset {
	if n > d.rows {
		n = d.rows
	}
	if n < 0 {
		n = 0
	}
	return d.Take(seq(d.rows-n, d.rows))
}

// Clone returns an independent deep copy.
func (d *Dataset) Clone() *Dataset {
	cols := make([]*Column, len(d.cols))
	for j, c := range d.cols {
		cols[j] = &Column{name: c.name, kind: c.kind, values: c.Values()}
	}
	out, err := NewSized(d.rows, cols...)
	if err != nil {
		panic(err)
	}
	return out
}

// Equal compares column order, names, kinds and every cell.
func (d *Dataset) Equal(o *Dataset) bool {
	if d.rows != o.rows || len(d.cols) != len(o.cols) {
		return false
	}
	for j := range d.cols {
		if !d.cols[j].Equal(o.cols[j]) {
			return false
		}
	}
	return true
}

// Shape renders "rows × cols".
func (d *Dataset) Shape() string {
	return fmt.Sprintf("%d rows × %d columns", d.rows, len(d.cols))
}

// String renders a small fixed-width preview, mainly for debugging.
func (d *Dataset) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(d.Names(), "\t"))
	b.WriteString("\n")
	for r := 0; r < d.rows; r++ {
		b.WriteString(strings.Join(d.RowStrings(r), "\t"))
		b.WriteString("\n")
	}
	return b.String()
}

func seq(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}
