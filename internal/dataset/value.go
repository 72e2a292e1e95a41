// Package dataset holds the in-memory table model shared by every pipeline stage.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the declared type of a column.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindText
	KindBool
)

// MissingSentinel is the string form of a missing cell wherever a textual
// representation is required (label encoding, one-hot column names).
const MissingSentinel = "nan"

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBool:
		return "boolean"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// IsNumeric reports whether the kind is integer or floating-point.
func (k Kind) IsNumeric() bool { return k == KindInt || k == KindFloat }

// ParseKind maps a kind name back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integer", "int", "int64":
		return KindInt, nil
	case "float", "float64", "double":
		return KindFloat, nil
	case "text", "string", "object":
		return KindText, nil
	case "boolean", "bool":
		return KindBool, nil
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}

// Value is a single cell. The zero Value is a missing cell.
type Value struct {
	kind  Kind
	valid bool
	i     int64
	f     float64
	s     string
	b     bool
}

func Int(v int64) Value { return Value{kind: KindInt, valid: true, i: v} }

// Float returns a float cell. NaN is treated as missing.
func Float(v float64) Value {
	if math.IsNaN(v) {
		return Missing()
	}
	return Value{kind: KindFloat, valid: true, f: v}
}

func Text(v string) Value { return Value{kind: KindText, valid: true, s: v} }

func Bool(v bool) Value { return Value{kind: KindBool, valid: true, b: v} }

// Missing returns the missing marker.
func Missing() Value { return Value{} }

func (v Value) IsMissing() bool { return !v.valid }

// Kind returns the variant tag. It is meaningless for missing cells.
func (v Value) Kind() Kind { return v.kind }

// AsInt returns the integer payload; ok is false for anything but a present int.
func (v Value) AsInt() (int64, bool) {
	if !v.valid || v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsFloat returns the numeric payload of an int or float cell.
func (v Value) AsFloat() (float64, bool) {
	if !v.valid {
		return 0, false
	}
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

func (v Value) AsText() (string, bool) {
	if !v.valid || v.kind != KindText {
		return "", false
	}
	return v.s, true
}

func (v Value) AsBool() (bool, bool) {
	if !v.valid || v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// String renders the cell. Missing cells render as the empty string.
func (v Value) String() string {
	if !v.valid {
		return ""
	}
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return FormatFloat(v.f)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// Key renders the cell for grouping and encoding: missing cells become
// MissingSentinel instead of the empty string.
func (v Value) Key() string {
	if !v.valid {
		return MissingSentinel
	}
	return v.String()
}

// Equal compares kind and payload. Two missing cells are equal.
func (v Value) Equal(o Value) bool {
	if v.valid != o.valid {
		return false
	}
	if !v.valid {
		return true
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindBool:
		return v.b == o.b
	default:
		return v.s == o.s
	}
}

// Less orders two present values of the same column: numerically for
// numeric kinds, false before true for booleans, bytewise otherwise.
func (v Value) Less(o Value) bool {
	if a, ok := v.AsFloat(); ok {
		if b, ok := o.AsFloat(); ok {
			return a < b
		}
	}
	if a, ok := v.AsBool(); ok {
		if b, ok := o.AsBool(); ok {
			return !a && b
		}
	}
	return v.String() < o.String()
}

// FormatFloat renders f in shortest form, keeping a decimal point on
// integral values so that the text re-parses as a float.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if math.IsInf(f, 0) {
		return s
	}
	if math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
