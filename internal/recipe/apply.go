package recipe

import (
	"fmt"

	"github.com/KaramelBytes/dataprep-cli/internal/clean"
	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
	"github.com/KaramelBytes/dataprep-cli/internal/encode"
	"github.com/KaramelBytes/dataprep-cli/internal/store"
)

// Options carries defaults that steps fall back to.
type Options struct {
	// UnitTokens are stripped by convert when the step names none.
	UnitTokens []string
}

// Outcome describes what a step changed.
type Outcome struct {
	Step    Step
	Message string
}

// Apply runs one step against the store's current dataset. The store is
// unchanged when the step fails.
func Apply(st *store.Store, s Step, opt Options) (Outcome, error) {
	if err := s.Validate(); err != nil {
		return Outcome{}, err
	}
	out := Outcome{Step: s}
	if s.Op == OpReset {
		if err := st.Reset(); err != nil {
			return Outcome{}, err
		}
		out.Message = "restored the loaded dataset"
		return out, nil
	}

	var fn func(*dataset.Dataset) (*dataset.Dataset, error)
	switch s.Op {
	case OpConvert:
		units := s.Units
		if units == nil {
			units = opt.UnitTokens
		}
		fn = func(ds *dataset.Dataset) (*dataset.Dataset, error) {
			next, err := clean.StripUnitsAndCoerce(ds, s.Targets(), units)
			if err != nil {
				return nil, err
			}
			missing := 0
			for _, name := range s.Targets() {
				c, _ := next.Column(name)
				missing += c.MissingCount()
			}
			out.Message = fmt.Sprintf("converted %d column(s) to float; %d missing after conversion", len(s.Targets()), missing)
			return next, nil
		}
	case OpFill:
		method, _ := clean.ParseFillMethod(s.Method)
		col := s.Targets()[0]
		fn = func(ds *dataset.Dataset) (*dataset.Dataset, error) {
			before, err := ds.Lookup("fill", col)
			if err != nil {
				return nil, err
			}
			n := before.MissingCount()
			res, err := clean.FillMissing(ds, col, clean.FillOptions{Method: method, Literal: s.Value})
			if err != nil {
				return nil, err
			}
			out.Message = fmt.Sprintf("filled %d missing value(s) in %s with %s; %d remaining", n-res.Remaining, col, method, res.Remaining)
			return res.Dataset, nil
		}
	case OpDropRows:
		mode, _ := clean.ParseDropMode(s.Mode)
		fn = func(ds *dataset.Dataset) (*dataset.Dataset, error) {
			res, err := clean.DropRows(ds, mode, s.Threshold)
			if err != nil {
				return nil, err
			}
			out.Message = fmt.Sprintf("removed %d row(s); %d remaining", res.Removed, res.Remaining)
			return res.Dataset, nil
		}
	case OpDropColumns:
		fn = func(ds *dataset.Dataset) (*dataset.Dataset, error) {
			next, err := clean.DropColumns(ds, s.Targets())
			if err != nil {
				return nil, err
			}
			out.Message = fmt.Sprintf("dropped %d column(s); %d remaining", ds.NumCols()-next.NumCols(), next.NumCols())
			return next, nil
		}
	case OpOneHot:
		fn = func(ds *dataset.Dataset) (*dataset.Dataset, error) {
			next, err := encode.OneHot(ds, s.Targets())
			if err != nil {
				return nil, err
			}
			out.Message = fmt.Sprintf("one-hot encoded %d column(s); shape now %s", len(s.Targets()), next.Shape())
			return next, nil
		}
	case OpLabel:
		fn = func(ds *dataset.Dataset) (*dataset.Dataset, error) {
			next, err := encode.LabelEncode(ds, s.Targets())
			if err != nil {
				return nil, err
			}
			out.Message = fmt.Sprintf("label encoded %d column(s)", len(s.Targets()))
			return next, nil
		}
	}
	if err := st.Apply(s.String(), fn); err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// Run applies every step in order and stops at the first failure. Steps
// applied before the failure stay applied.
func Run(st *store.Store, r *Recipe, opt Options) ([]Outcome, error) {
	outs := make([]Outcome, 0, len(r.Steps))
	for i, s := range r.Steps {
		o, err := Apply(st, s, opt)
		if err != nil {
			return outs, fmt.Errorf("step %d (%s): %w", i+1, s, err)
		}
		outs = append(outs, o)
	}
	return outs, nil
}
