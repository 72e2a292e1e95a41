package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
)

// missingCell marks a field absent from the input, independent of MissingTokens.
const missingCell = "\x00"

// build infers a declared kind per column and assembles the dataset.
// A column is integer if every present cell parses as an integer, float if
// every present cell parses as a number, boolean if every present cell is
// true/false, text otherwise. Columns with no present cell are float, like
// an all-NA column read by a dataframe library.
func build(header []string, rows [][]string, missingTokens []string) (*dataset.Dataset, error) {
	missing := make(map[string]struct{}, len(missingTokens))
	for _, t := range missingTokens {
		missing[strings.TrimSpace(t)] = struct{}{}
	}
	names := normalizeHeader(header)
	cols := make([]*dataset.Column, len(names))
	raw := make([]string, len(rows))
	for j, name := range names {
		present := make([]bool, len(rows))
		for i, row := range rows {
			raw[i] = row[j]
			if row[j] == missingCell {
				continue
			}
			if _, ok := missing[strings.TrimSpace(row[j])]; ok {
				continue
			}
			present[i] = true
		}
		col, err := inferColumn(name, raw, present)
		if err != nil {
			return nil, &dataset.ParseError{Err: err}
		}
		cols[j] = col
	}
	d, err := dataset.NewSized(len(rows), cols...)
	if err != nil {
		return nil, &dataset.ParseError{Err: err}
	}
	return d, nil
}

func inferColumn(name string, raw []string, present []bool) (*dataset.Column, error) {
	var kind dataset.Kind
	seen := false
	isInt, isFloat, isBool := true, true, true
	for i, s := range raw {
		if !present[i] {
			continue
		}
		seen = true
		t := strings.TrimSpace(s)
		if isInt {
			if _, err := strconv.ParseInt(t, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, ok := ParseNumber(t); !ok {
				isFloat = false
			}
		}
		if isBool {
			if _, ok := parseBool(t); !ok {
				isBool = false
			}
		}
		if !isInt && !isFloat && !isBool {
			break
		}
	}
	switch {
	case !seen && len(raw) == 0:
		kind = dataset.KindText
	case !seen:
		kind = dataset.KindFloat
	case isInt:
		kind = dataset.KindInt
	case isFloat:
		kind = dataset.KindFloat
	case isBool:
		kind = dataset.KindBool
	default:
		kind = dataset.KindText
	}

	vals := make([]dataset.Value, len(raw))
	for i, s := range raw {
		if !present[i] {
			continue
		}
		t := strings.TrimSpace(s)
		switch kind {
		case dataset.KindInt:
			n, _ := strconv.ParseInt(t, 10, 64)
			vals[i] = dataset.Int(n)
		case dataset.KindFloat:
			f, _ := ParseNumber(t)
			vals[i] = dataset.Float(f)
		case dataset.KindBool:
			b, _ := parseBool(t)
			vals[i] = dataset.Bool(b)
		default:
			vals[i] = dataset.Text(s)
		}
	}
	return dataset.NewColumn(name, kind, vals)
}

// ParseNumber parses a plain decimal or scientific number. Hex floats and
// digit separators are rejected so that identifiers like "0x1F" stay text.
func ParseNumber(s string) (float64, bool) {
	if s == "" || strings.ContainsAny(s, "_xXpP") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseBool(s string) (bool, bool) {
	switch {
	case strings.EqualFold(s, "true"):
		return true, true
	case strings.EqualFold(s, "false"):
		return false, true
	}
	return false, false
}

// normalizeHeader names blank headers "Unnamed: i" and suffixes repeats
// with ".1", ".2", ... so that column names stay unique.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	counts := make(map[string]int)
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if used[name] {
			base := name
			n := counts[base]
			for used[name] {
				n++
				name = fmt.Sprintf("%s.%d", base, n)
			}
			counts[base] = n
		}
		used[name] = true
		out[i] = name
	}
	return out
}
