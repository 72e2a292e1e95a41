package clean

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
	"github.com/KaramelBytes/dataprep-cli/internal/parser"
)

// FillMethod selects how missing cells are imputed.
type FillMethod string

const (
	FillMean     FillMethod = "mean"
	FillMedian   FillMethod = "median"
	FillMode     FillMethod = "mode"
	FillForward  FillMethod = "ffill"
	FillBackward FillMethod = "bfill"
	FillConstant FillMethod = "constant"
)

// ParseFillMethod accepts the method names plus a few common aliases.
func ParseFillMethod(s string) (FillMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mean":
		return FillMean, nil
	case "median":
		return FillMedian, nil
	case "mode", "most_frequent":
		return FillMode, nil
	case "ffill", "forward", "pad":
		return FillForward, nil
	case "bfill", "backward", "backfill":
		return FillBackward, nil
	case "constant", "custom", "value":
		return FillConstant, nil
	}
	return "", &dataset.OpError{Op: "fill", Err: dataset.ErrInvalidParameter, Msg: fmt.Sprintf("unknown fill method %q", s)}
}

// FillOptions parameterizes FillMissing. Literal is required for FillConstant.
type FillOptions struct {
	Method  FillMethod
	Literal *string
}

// FillResult carries the new dataset and the number of missing cells still
// left in the target column.
type FillResult struct {
	Dataset   *dataset.Dataset
	Remaining int
}

// FillMissing imputes the missing cells of one column. Only that column
// changes. A column without missing cells is returned unchanged.
//
// mean and median require a numeric column and turn an integer column into
// float. A constant literal that does not parse as the column kind turns
// the column into text.
func FillMissing(ds *dataset.Dataset, column string, opt FillOptions) (FillResult, error) {
	const op = "fill"
	col, err := ds.Lookup(op, column)
	if err != nil {
		return FillResult{}, err
	}
	switch opt.Method {
	case FillMean, FillMedian:
		if !col.Kind().IsNumeric() {
			return FillResult{}, &dataset.OpError{Op: op, Column: column, Err: dataset.ErrTypeMismatch,
				Msg: fmt.Sprintf("%s requires a numeric column, got %s", opt.Method, col.Kind())}
		}
	case FillMode, FillForward, FillBackward:
	case FillConstant:
		if opt.Literal == nil {
			return FillResult{}, &dataset.OpError{Op: op, Column: column, Err: dataset.ErrInvalidParameter, Msg: "constant fill needs a value"}
		}
	default:
		return FillResult{}, &dataset.OpError{Op: op, Column: column, Err: dataset.ErrInvalidParameter, Msg: fmt.Sprintf("unknown fill method %q", opt.Method)}
	}
	if col.MissingCount() == 0 {
		return FillResult{Dataset: ds}, nil
	}
	present := col.Len() - col.MissingCount()
	if present == 0 && (opt.Method == FillMean || opt.Method == FillMedian || opt.Method == FillMode) {
		return FillResult{}, &dataset.OpError{Op: op, Column: column, Err: dataset.ErrEmptyColumn,
			Msg: fmt.Sprintf("%s is undefined when every value is missing", opt.Method)}
	}

	var nc *dataset.Column
	switch opt.Method {
	case FillMean:
		nc, err = fillWith(col, dataset.KindFloat, dataset.Float(mean(col)))
	case FillMedian:
		nc, err = fillWith(col, dataset.KindFloat, dataset.Float(median(col)))
	case FillMode:
		nc, err = fillWith(col, col.Kind(), mode(col))
	case FillForward:
		nc, err = propagate(col, false)
	case FillBackward:
		nc, err = propagate(col, true)
	case FillConstant:
		nc, err = fillConstant(col, *opt.Literal)
	}
	if err != nil {
		return FillResult{}, err
	}
	out, err := ds.WithColumn(nc)
	if err != nil {
		return FillResult{}, err
	}
	return FillResult{Dataset: out, Remaining: nc.MissingCount()}, nil
}

// fillWith replaces missing cells with v, converting present cells to kind.
func fillWith(col *dataset.Column, kind dataset.Kind, v dataset.Value) (*dataset.Column, error) {
	vals := col.Values()
	for i, x := range vals {
		if x.IsMissing() {
			vals[i] = v
			continue
		}
		if kind == dataset.KindFloat && x.Kind() == dataset.KindInt {
			f, _ := x.AsFloat()
			vals[i] = dataset.Float(f)
		}
	}
	return dataset.NewColumn(col.Name(), kind, vals)
}

func mean(col *dataset.Column) float64 {
	var sum float64
	n := 0
	for i := 0; i < col.Len(); i++ {
		if f, ok := col.Value(i).AsFloat(); ok {
			sum += f
			n++
		}
	}
	return sum / float64(n)
}

func median(col *dataset.Column) float64 {
	var vals []float64
	for i := 0; i < col.Len(); i++ {
		if f, ok := col.Value(i).AsFloat(); ok {
			vals = append(vals, f)
		}
	}
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}

// mode returns the most frequent present value; ties go to the value seen first.
func mode(col *dataset.Column) dataset.Value {
	counts := map[string]int{}
	var best dataset.Value
	bestN := 0
	for i := 0; i < col.Len(); i++ {
		v := col.Value(i)
		if v.IsMissing() {
			continue
		}
		counts[v.String()]++
	}
	for _, v := range col.Distinct() {
		if n := counts[v.String()]; n > bestN {
			best, bestN = v, n
		}
	}
	return best
}

// propagate carries present values down (or up when backward) into missing cells.
func propagate(col *dataset.Column, backward bool) (*dataset.Column, error) {
	vals := col.Values()
	var last dataset.Value
	step := func(i int) {
		if vals[i].IsMissing() {
			vals[i] = last
		} else {
			last = vals[i]
		}
	}
	if backward {
		for i := len(vals) - 1; i >= 0; i-- {
			step(i)
		}
	} else {
		for i := range vals {
			step(i)
		}
	}
	return dataset.NewColumn(col.Name(), col.Kind(), vals)
}

func fillConstant(col *dataset.Column, literal string) (*dataset.Column, error) {
	t := strings.TrimSpace(literal)
	switch col.Kind() {
	case dataset.KindInt:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return fillWith(col, dataset.KindInt, dataset.Int(n))
		}
		if f, ok := parser.ParseNumber(t); ok {
			return fillWith(col, dataset.KindFloat, dataset.Float(f))
		}
	case dataset.KindFloat:
		if f, ok := parser.ParseNumber(t); ok {
			return fillWith(col, dataset.KindFloat, dataset.Float(f))
		}
	case dataset.KindBool:
		switch {
		case strings.EqualFold(t, "true"):
			return fillWith(col, dataset.KindBool, dataset.Bool(true))
		case strings.EqualFold(t, "false"):
			return fillWith(col, dataset.KindBool, dataset.Bool(false))
		}
	case dataset.KindText:
		return fillWith(col, dataset.KindText, dataset.Text(literal))
	}
	return fillWith(col.AsText(), dataset.KindText, dataset.Text(literal))
}
