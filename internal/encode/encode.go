// Package encode turns categorical columns into numeric ones.
package encode

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
)

// OneHot replaces each named categorical column C with one 0/1 integer
// column per distinct value of C, named "C_value". Missing cells form
// their own category named with dataset.MissingSentinel. Indicator columns
// take C's position, in order of first appearance.
func OneHot(ds *dataset.Dataset, columns []string) (*dataset.Dataset, error) {
	const op = "onehot"
	if len(columns) == 0 {
		return nil, &dataset.OpError{Op: op, Err: dataset.ErrEmptySelection}
	}
	expand := make(map[string][]*dataset.Column, len(columns))
	for _, name := range columns {
		col, err := ds.Lookup(op, name)
		if err != nil {
			return nil, err
		}
		if col.Kind().IsNumeric() {
			return nil, &dataset.OpError{Op: op, Column: name, Err: dataset.ErrTypeMismatch, Msg: "column is already numeric"}
		}
		if _, dup := expand[name]; dup {
			continue
		}
		expand[name] = indicators(col)
	}

	var out []*dataset.Column
	seen := make(map[string]string)
	for _, c := range ds.Columns() {
		parts, ok := expand[c.Name()]
		if !ok {
			parts = []*dataset.Column{c}
		}
		for _, p := range parts {
			if src, dup := seen[p.Name()]; dup {
				return nil, &dataset.OpError{Op: op, Column: c.Name(), Err: dataset.ErrNameCollision,
					Msg: fmt.Sprintf("%q already produced by %q", p.Name(), src)}
			}
			seen[p.Name()] = c.Name()
			out = append(out, p)
		}
	}
	return dataset.NewSized(ds.NumRows(), out...)
}

func indicators(col *dataset.Column) []*dataset.Column {
	var cats []string
	index := map[string]int{}
	codes := make([]int, col.Len())
	for i := 0; i < col.Len(); i++ {
		k := col.Value(i).Key()
		j, ok := index[k]
		if !ok {
			j = len(cats)
			index[k] = j
			cats = append(cats, k)
		}
		codes[i] = j
	}
	out := make([]*dataset.Column, len(cats))
	for j, cat := range cats {
		vals := make([]dataset.Value, col.Len())
		for i, code := range codes {
			if code == j {
				vals[i] = dataset.Int(1)
			} else {
				vals[i] = dataset.Int(0)
			}
		}
		out[j] = dataset.MustColumn(col.Name()+"_"+cat, dataset.KindInt, vals...)
	}
	return out
}

// LabelEncode replaces each named categorical column with integer codes.
// Codes follow the sorted order of the distinct string forms, missing cells
// included as dataset.MissingSentinel.
func LabelEncode(ds *dataset.Dataset, columns []string) (*dataset.Dataset, error) {
	const op = "label"
	if len(columns) == 0 {
		return nil, &dataset.OpError{Op: op, Err: dataset.ErrEmptySelection}
	}
	out := ds
	for _, name := range columns {
		col, err := out.Lookup(op, name)
		if err != nil {
			return nil, err
		}
		if col.Kind().IsNumeric() {
			return nil, &dataset.OpError{Op: op, Column: name, Err: dataset.ErrTypeMismatch, Msg: "column is already numeric"}
		}
		codes := Classes(col)
		vals := make([]dataset.Value, col.Len())
		for i := range vals {
			vals[i] = dataset.Int(int64(codes[col.Value(i).Key()]))
		}
		nc, err := dataset.NewColumn(name, dataset.KindInt, vals)
		if err != nil {
			return nil, err
		}
		if out, err = out.WithColumn(nc); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Classes returns the label code of every distinct key of col.
func Classes(col *dataset.Column) map[string]int {
	var keys []string
	seen := map[string]bool{}
	for i := 0; i < col.Len(); i++ {
		k := col.Value(i).Key()
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	codes := make(map[string]int, len(keys))
	for i, k := range keys {
		codes[k] = i
	}
	return codes
}
