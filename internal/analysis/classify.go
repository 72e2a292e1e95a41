package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
)

// Classification partitions column names by declared kind, in column order.
type Classification struct {
	Numeric     []string
	Categorical []string
}

// Classify splits columns into numeric (integer or float) and categorical (everything else).
func Classify(ds *dataset.Dataset) Classification {
	var c Classification
	for _, col := range ds.Columns() {
		if col.Kind().IsNumeric() {
			c.Numeric = append(c.Numeric, col.Name())
		} else {
			c.Categorical = append(c.Categorical, col.Name())
		}
	}
	return c
}

// ColumnsWithMissing lists columns holding at least one missing cell.
func ColumnsWithMissing(ds *dataset.Dataset) []string {
	var out []string
	for _, col := range ds.Columns() {
		if col.MissingCount() > 0 {
			out = append(out, col.Name())
		}
	}
	return out
}

// MissingStat is one line of the missing-values table.
type MissingStat struct {
	Name    string
	Count   int
	Percent float64
}

// MissingSummary reports missing counts per column, descending by count.
// Columns without missing cells are omitted; ties keep column order.
func MissingSummary(ds *dataset.Dataset) []MissingStat {
	var out []MissingStat
	rows := ds.NumRows()
	for _, col := range ds.Columns() {
		n := col.MissingCount()
		if n == 0 {
			continue
		}
		out = append(out, MissingStat{Name: col.Name(), Count: n, Percent: round2(float64(n) * 100 / float64(rows))})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Descriptor summarizes a column. It is derived on every call and never cached.
type Descriptor struct {
	Name     string
	Kind     dataset.Kind
	NonNull  int
	Missing  int
	Distinct int
}

// Numeric reports whether the column is integer or float.
func (d Descriptor) Numeric() bool { return d.Kind.IsNumeric() }

// Descriptors describes every column in order.
func Descriptors(ds *dataset.Dataset) []Descriptor {
	out := make([]Descriptor, 0, ds.NumCols())
	for _, col := range ds.Columns() {
		miss := col.MissingCount()
		out = append(out, Descriptor{
			Name:     col.Name(),
			Kind:     col.Kind(),
			NonNull:  col.Len() - miss,
			Missing:  miss,
			Distinct: len(col.Distinct()),
		})
	}
	return out
}

// TypeInfo is the dtype table: Descriptors without the distinct count pass.
func TypeInfo(ds *dataset.Dataset) []Descriptor {
	out := make([]Descriptor, 0, ds.NumCols())
	for _, col := range ds.Columns() {
		miss := col.MissingCount()
		out = append(out, Descriptor{Name: col.Name(), Kind: col.Kind(), NonNull: col.Len() - miss, Missing: miss})
	}
	return out
}

// MultiCategoryColumns lists categorical columns with at least two distinct
// present values, the candidates for encoding and cross tabulation.
func MultiCategoryColumns(ds *dataset.Dataset) []string {
	var out []string
	for _, col := range ds.Columns() {
		if col.Kind().IsNumeric() {
			continue
		}
		if len(col.Distinct()) >= 2 {
			out = append(out, col.Name())
		}
	}
	return out
}

// NUnique counts distinct present values in a column.
func NUnique(ds *dataset.Dataset, column string) (int, error) {
	col, err := ds.Lookup("nunique", column)
	if err != nil {
		return 0, err
	}
	return len(col.Distinct()), nil
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
