package analysis

import (
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
)

// Overview is the at-a-glance report shown after loading a file.
type Overview struct {
	Name       string
	Rows       int
	Cols       int
	Missing    int
	Duplicates int
	Types      []Descriptor
	Head       *dataset.Dataset
	Tail       *dataset.Dataset
}

// OverviewReport computes shape, missing and duplicate totals, the dtype
// table and sampleRows rows from each end of ds.
func OverviewReport(ds *dataset.Dataset, sampleRows int) *Overview {
	if sampleRows < 0 {
		sampleRows = 5
	}
	return &Overview{
		Rows:       ds.NumRows(),
		Cols:       ds.NumCols(),
		Missing:    ds.MissingCount(),
		Duplicates: DuplicateCount(ds),
		Types:      TypeInfo(ds),
		Head:       ds.Head(sampleRows),
		Tail:       ds.Tail(sampleRows),
	}
}

// rowKey identifies a row by its cell values. Missing cells get a byte
// that cannot appear in a rendered value.
func rowKey(ds *dataset.Dataset, r int) string {
	var b strings.Builder
	for j := 0; j < ds.NumCols(); j++ {
		if j > 0 {
			b.WriteByte(0x1f)
		}
		v := ds.ColumnAt(j).Value(r)
		if v.IsMissing() {
			b.WriteByte(0)
			continue
		}
		b.WriteString(v.String())
	}
	return b.String()
}

// DuplicateCount counts rows identical to an earlier row.
func DuplicateCount(ds *dataset.Dataset) int {
	seen := make(map[string]struct{}, ds.NumRows())
	n := 0
	for r := 0; r < ds.NumRows(); r++ {
		k := rowKey(ds, r)
		if _, ok := seen[k]; ok {
			n++
			continue
		}
		seen[k] = struct{}{}
	}
	return n
}

// DuplicateRows returns every row that has at least one identical row,
// first occurrences included, in row order. limit <= 0 means all.
func DuplicateRows(ds *dataset.Dataset, limit int) *dataset.Dataset {
	counts := make(map[string]int, ds.NumRows())
	keys := make([]string, ds.NumRows())
	for r := range keys {
		keys[r] = rowKey(ds, r)
		counts[keys[r]]++
	}
	var rows []int
	for r, k := range keys {
		if counts[k] > 1 {
			rows = append(rows, r)
			if limit > 0 && len(rows) == limit {
				break
			}
		}
	}
	return ds.Take(rows)
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64
}

// PairCorr is one off-diagonal entry of a CorrMatrix.
type PairCorr struct {
	A, B string
	R    float64
}

// Correlations computes pairwise-complete Pearson correlations among the
// numeric columns. Pairs with fewer than two shared rows or zero variance
// are NaN.
func Correlations(ds *dataset.Dataset) *CorrMatrix {
	var cols []*dataset.Column
	for _, c := range ds.Columns() {
		if c.Kind().IsNumeric() {
			cols = append(cols, c)
		}
	}
	n := len(cols)
	m := &CorrMatrix{Columns: make([]string, n), Values: make([][]float64, n)}
	for i, c := range cols {
		m.Columns[i] = c.Name()
		m.Values[i] = make([]float64, n)
	}
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			r := pearson(cols[a], cols[b])
			m.Values[a][b] = r
			m.Values[b][a] = r
		}
	}
	return m
}

func pearson(x, y *dataset.Column) float64 {
	var n, sumX, sumY, sumXX, sumYY, sumXY float64
	for i := 0; i < x.Len(); i++ {
		a, ok1 := x.Value(i).AsFloat()
		b, ok2 := y.Value(i).AsFloat()
		if !ok1 || !ok2 {
			continue
		}
		n++
		sumX += a
		sumY += b
		sumXX += a * a
		sumYY += b * b
		sumXY += a * b
	}
	if n < 2 {
		return math.NaN()
	}
	denom := math.Sqrt((n*sumXX - sumX*sumX) * (n*sumYY - sumY*sumY))
	if denom == 0 || math.IsNaN(denom) {
		return math.NaN()
	}
	r := (n*sumXY - sumX*sumY) / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// TopPairs lists off-diagonal pairs by descending |r|, skipping NaN. limit <= 0 means all.
func (m *CorrMatrix) TopPairs(limit int) []PairCorr {
	var pairs []PairCorr
	for i := range m.Columns {
		for j := i + 1; j < len(m.Columns); j++ {
			r := m.Values[i][j]
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: r})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].R) > math.Abs(pairs[j].R)
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

// Contingency is a cross tabulation of two columns. Counts[i][j] is the
// number of rows with RowKeys[i] and ColKeys[j]. Keys are sorted.
type Contingency struct {
	RowColumn string
	ColColumn string
	RowKeys   []string
	ColKeys   []string
	Counts    [][]int
}

// Crosstab counts co-occurrences of the present values of two columns.
func Crosstab(ds *dataset.Dataset, rowCol, colCol string) (*Contingency, error) {
	rc, err := ds.Lookup("crosstab", rowCol)
	if err != nil {
		return nil, err
	}
	cc, err := ds.Lookup("crosstab", colCol)
	if err != nil {
		return nil, err
	}
	rowKeys := sortedKeys(rc)
	colKeys := sortedKeys(cc)
	ri := indexOf(rowKeys)
	ci := indexOf(colKeys)
	counts := make([][]int, len(rowKeys))
	for i := range counts {
		counts[i] = make([]int, len(colKeys))
	}
	for r := 0; r < ds.NumRows(); r++ {
		a, b := rc.Value(r), cc.Value(r)
		if a.IsMissing() || b.IsMissing() {
			continue
		}
		counts[ri[a.String()]][ci[b.String()]]++
	}
	return &Contingency{RowColumn: rowCol, ColColumn: colCol, RowKeys: rowKeys, ColKeys: colKeys, Counts: counts}, nil
}

func sortedKeys(c *dataset.Column) []string {
	vals := c.Distinct()
	sort.SliceStable(vals, func(i, j int) bool { return vals[i].Less(vals[j]) })
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.String()
	}
	return out
}

func indexOf(keys []string) map[string]int {
	m := make(map[string]int, len(keys))
	for i, k := range keys {
		m[k] = i
	}
	return m
}
