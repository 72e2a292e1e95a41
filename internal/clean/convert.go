// Package clean implements the cleaning operations: unit stripping, missing
// value imputation and row/column removal. Every function returns a new
// dataset and leaves its input untouched.
package clean

import (
	"strings"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
	"github.com/KaramelBytes/dataprep-cli/internal/parser"
)

// DefaultUnitTokens are the unit suffixes stripped before numeric coercion.
var DefaultUnitTokens = []string{"GB", "kg", "GHz", "$"}

// StripUnitsAndCoerce removes every literal occurrence of each token from
// the text of the named columns and parses what is left as a number.
// Unparseable cells become missing. The columns become float.
// A nil tokens slice means DefaultUnitTokens.
func StripUnitsAndCoerce(ds *dataset.Dataset, columns []string, tokens []string) (*dataset.Dataset, error) {
	const op = "convert"
	if len(columns) == 0 {
		return nil, &dataset.OpError{Op: op, Err: dataset.ErrEmptySelection}
	}
	if tokens == nil {
		tokens = DefaultUnitTokens
	}
	out := ds
	for _, name := range columns {
		col, err := out.Lookup(op, name)
		if err != nil {
			return nil, err
		}
		vals := make([]dataset.Value, col.Len())
		for i := range vals {
			v := col.Value(i)
			if v.IsMissing() {
				continue
			}
			vals[i] = coerce(v.String(), tokens)
		}
		nc, err := dataset.NewColumn(name, dataset.KindFloat, vals)
		if err != nil {
			return nil, err
		}
		if out, err = out.WithColumn(nc); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func coerce(s string, tokens []string) dataset.Value {
	for _, t := range tokens {
		if t == "" {
			continue
		}
		s = strings.ReplaceAll(s, t, "")
	}
	f, ok := parser.ParseNumber(strings.TrimSpace(s))
	if !ok {
		return dataset.Missing()
	}
	return dataset.Float(f)
}
