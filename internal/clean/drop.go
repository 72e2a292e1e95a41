package clean

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
)

// DropMode selects which rows DropRows removes.
type DropMode string

const (
	DropAny       DropMode = "any"
	DropAll       DropMode = "all"
	DropThreshold DropMode = "thresh"
)

// ParseDropMode accepts "any", "all" or "thresh".
func ParseDropMode(s string) (DropMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "any":
		return DropAny, nil
	case "all":
		return DropAll, nil
	case "thresh", "threshold":
		return DropThreshold, nil
	}
	return "", &dataset.OpError{Op: "drop-rows", Err: dataset.ErrInvalidParameter, Msg: fmt.Sprintf("unknown mode %q (want any, all or thresh)", s)}
}

// DropResult carries the filtered dataset and the row bookkeeping.
type DropResult struct {
	Dataset   *dataset.Dataset
	Removed   int
	Remaining int
}

// DropRows removes rows by their missing cells. DropAny removes rows with
// any missing cell, DropAll rows where every cell is missing, DropThreshold
// rows with fewer than threshold present cells. threshold must lie in
// [1, column count] and is ignored by the other modes. Surviving rows keep
// their order.
func DropRows(ds *dataset.Dataset, mode DropMode, threshold int) (DropResult, error) {
	const op = "drop-rows"
	ncol := ds.NumCols()
	var keep func(present int) bool
	switch mode {
	case DropAny:
		keep = func(present int) bool { return present == ncol }
	case DropAll:
		keep = func(present int) bool { return present > 0 }
	case DropThreshold:
		if threshold < 1 || threshold > ncol {
			return DropResult{}, &dataset.OpError{Op: op, Err: dataset.ErrInvalidParameter,
				Msg: fmt.Sprintf("threshold %d outside [1, %d]", threshold, ncol)}
		}
		keep = func(present int) bool { return present >= threshold }
	default:
		return DropResult{}, &dataset.OpError{Op: op, Err: dataset.ErrInvalidParameter, Msg: fmt.Sprintf("unknown mode %q", mode)}
	}

	rows := make([]int, 0, ds.NumRows())
	for r := 0; r < ds.NumRows(); r++ {
		present := 0
		for j := 0; j < ncol; j++ {
			if !ds.ColumnAt(j).Value(r).IsMissing() {
				present++
			}
		}
		if keep(present) {
			rows = append(rows, r)
		}
	}
	out := ds.Take(rows)
	return DropResult{Dataset: out, Removed: ds.NumRows() - len(rows), Remaining: len(rows)}, nil
}

// DropColumns removes the named columns. It fails without changes if names
// is empty or any name is absent.
func DropColumns(ds *dataset.Dataset, names []string) (*dataset.Dataset, error) {
	const op = "drop-columns"
	if len(names) == 0 {
		return nil, &dataset.OpError{Op: op, Err: dataset.ErrEmptySelection, Msg: "no columns selected"}
	}
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if _, err := ds.Lookup(op, n); err != nil {
			return nil, err
		}
		drop[n] = true
	}
	var keep []*dataset.Column
	for _, c := range ds.Columns() {
		if !drop[c.Name()] {
			keep = append(keep, c)
		}
	}
	return dataset.NewSized(ds.NumRows(), keep...)
}
