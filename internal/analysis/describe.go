package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
)

// OutlierThreshold is the robust |z| above which a value counts as an outlier.
const OutlierThreshold = 3.5

// Summary holds describe-style statistics for one column. Numeric columns
// fill the moment and quantile fields; categorical columns fill Unique,
// Top and Freq. Undefined statistics are NaN.
type Summary struct {
	Column  string
	Kind    dataset.Kind
	Count   int
	Missing int
	// numeric
	Mean     float64
	Std      float64
	Min      float64
	Q25      float64
	Median   float64
	Q75      float64
	Max      float64
	Outliers int
	// categorical
	Unique int
	Top    string
	Freq   int
}

// Numeric reports whether the summary carries numeric statistics.
func (s Summary) Numeric() bool { return s.Kind.IsNumeric() }

// Describe summarizes the named columns, or every column when none are named.
func Describe(ds *dataset.Dataset, columns ...string) ([]Summary, error) {
	cols := ds.Columns()
	if len(columns) > 0 {
		cols = cols[:0:0]
		for _, name := range columns {
			c, err := ds.Lookup("describe", name)
			if err != nil {
				return nil, err
			}
			cols = append(cols, c)
		}
	}
	out := make([]Summary, 0, len(cols))
	for _, c := range cols {
		if c.Kind().IsNumeric() {
			out = append(out, describeNumeric(c))
		} else {
			out = append(out, describeCategorical(c))
		}
	}
	return out, nil
}

func describeNumeric(c *dataset.Column) Summary {
	vals := numericValues(c)
	s := Summary{Column: c.Name(), Kind: c.Kind(), Count: len(vals), Missing: c.MissingCount()}
	nan := math.NaN()
	s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
	if len(vals) == 0 {
		return s
	}
	var mean, m2 float64
	for i, x := range vals {
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
	}
	s.Mean = mean
	if len(vals) > 1 {
		s.Std = math.Sqrt(m2 / float64(len(vals)-1))
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Q25 = quantile(sorted, 0.25)
	s.Median = quantile(sorted, 0.5)
	s.Q75 = quantile(sorted, 0.75)
	s.Outliers = countOutliers(sorted, OutlierThreshold)
	return s
}

func describeCategorical(c *dataset.Column) Summary {
	s := Summary{Column: c.Name(), Kind: c.Kind(), Missing: c.MissingCount()}
	s.Count = c.Len() - s.Missing
	counts := valueCounts(c)
	s.Unique = len(counts)
	if len(counts) > 0 {
		s.Top = counts[0].Value
		s.Freq = counts[0].Count
	}
	return s
}

// numericValues returns the present values of a numeric column in row order.
func numericValues(c *dataset.Column) []float64 {
	out := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if f, ok := c.Value(i).AsFloat(); ok {
			out = append(out, f)
		}
	}
	return out
}

// CategoryCount is a value with its number of occurrences.
type CategoryCount struct {
	Value string
	Count int
}

// ValueCounts returns the distinct present values of column by descending
// frequency, ties in order of first appearance. limit <= 0 means all.
func ValueCounts(ds *dataset.Dataset, column string, limit int) ([]CategoryCount, error) {
	c, err := ds.Lookup("value counts", column)
	if err != nil {
		return nil, err
	}
	out := valueCounts(c)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FrequencyTable is ValueCounts without a limit.
func FrequencyTable(ds *dataset.Dataset, column string) ([]CategoryCount, error) {
	return ValueCounts(ds, column, 0)
}

func valueCounts(c *dataset.Column) []CategoryCount {
	idx := map[string]int{}
	var out []CategoryCount
	for i := 0; i < c.Len(); i++ {
		v := c.Value(i)
		if v.IsMissing() {
			continue
		}
		k := v.String()
		if j, ok := idx[k]; ok {
			out[j].Count++
			continue
		}
		idx[k] = len(out)
		out = append(out, CategoryCount{Value: k, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// AggFunc is a group-by aggregation.
type AggFunc string

const (
	AggMean  AggFunc = "mean"
	AggCount AggFunc = "count"
)

// ParseAggFunc accepts "mean" or "count".
func ParseAggFunc(s string) (AggFunc, error) {
	switch f := AggFunc(strings.ToLower(strings.TrimSpace(s))); f {
	case AggMean, AggCount:
		return f, nil
	}
	return "", &dataset.OpError{Op: "groupby", Err: dataset.ErrInvalidParameter, Msg: fmt.Sprintf("unknown aggregation %q (want mean or count)", s)}
}

// GroupResult is the aggregate of one group. Value is NaN for a mean over
// a group with no present values.
type GroupResult struct {
	Key   dataset.Value
	Size  int
	Value float64
}

// GroupAggregate groups rows by the present values of group and applies fn
// to agg within each group. Results are ordered by key.
func GroupAggregate(ds *dataset.Dataset, group, agg string, fn AggFunc) ([]GroupResult, error) {
	g, err := ds.Lookup("groupby", group)
	if err != nil {
		return nil, err
	}
	a, err := ds.Lookup("groupby", agg)
	if err != nil {
		return nil, err
	}
	switch fn {
	case AggMean:
		if !a.Kind().IsNumeric() {
			return nil, &dataset.OpError{Op: "groupby", Column: agg, Err: dataset.ErrTypeMismatch, Msg: "mean requires a numeric column"}
		}
	case AggCount:
	default:
		return nil, &dataset.OpError{Op: "groupby", Err: dataset.ErrInvalidParameter, Msg: fmt.Sprintf("unknown aggregation %q", fn)}
	}

	type acc struct {
		key  dataset.Value
		size int
		n    int
		sum  float64
	}
	idx := map[string]*acc{}
	var order []*acc
	for i := 0; i < g.Len(); i++ {
		k := g.Value(i)
		if k.IsMissing() {
			continue
		}
		ga := idx[k.String()]
		if ga == nil {
			ga = &acc{key: k}
			idx[k.String()] = ga
			order = append(order, ga)
		}
		ga.size++
		v := a.Value(i)
		if v.IsMissing() {
			continue
		}
		ga.n++
		if f, ok := v.AsFloat(); ok {
			ga.sum += f
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].key.Less(order[j].key) })

	out := make([]GroupResult, len(order))
	for i, ga := range order {
		r := GroupResult{Key: ga.key, Size: ga.size}
		switch fn {
		case AggMean:
			r.Value = math.NaN()
			if ga.n > 0 {
				r.Value = ga.sum / float64(ga.n)
			}
		case AggCount:
			r.Value = float64(ga.n)
		}
		out[i] = r
	}
	return out, nil
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// countOutliers counts values whose robust z-score (via the median absolute
// deviation) exceeds threshold. Fewer than 8 values never yield outliers.
func countOutliers(sorted []float64, threshold float64) int {
	if len(sorted) < 8 {
		return 0
	}
	median := quantile(sorted, 0.5)
	dev := make([]float64, len(sorted))
	for i, v := range sorted {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad := quantile(dev, 0.5)
	if mad == 0 {
		return 0
	}
	n := 0
	for _, v := range sorted {
		if math.Abs(0.6745*(v-median)/mad) > threshold {
			n++
		}
	}
	return n
}
