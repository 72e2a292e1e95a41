package recipe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ParseStep reads one step in shell syntax:
//
//	convert Ram,Weight [GB,kg]
//	fill Price median
//	fill Company constant "Not listed"
//	drop-rows any | all | thresh 3
//	drop-columns Unnamed: 0
//	onehot Company,OpSys
//	label TypeName
//	reset
//
// Column lists are comma separated; a token with spaces must be quoted.
func ParseStep(line string) (Step, error) {
	args, err := SplitArgs(line)
	if err != nil {
		return Step{}, err
	}
	if len(args) == 0 {
		return Step{}, errors.New("empty step")
	}
	s := Step{Op: strings.ToLower(args[0])}
	args = args[1:]
	need := func(n int, usage string) error {
		if len(args) < n {
			return fmt.Errorf("usage: %s", usage)
		}
		return nil
	}
	switch s.Op {
	case OpConvert:
		if err := need(1, "convert <cols> [units]"); err != nil {
			return Step{}, err
		}
		s.Columns = splitList(args[0])
		if len(args) > 1 {
			s.Units = splitList(args[1])
		}
	case OpFill:
		if err := need(2, "fill <col> <mean|median|mode|ffill|bfill|constant> [value]"); err != nil {
			return Step{}, err
		}
		s.Column = args[0]
		s.Method = strings.ToLower(args[1])
		if len(args) > 2 {
			v := strings.Join(args[2:], " ")
			s.Value = &v
		}
	case OpDropRows:
		if err := need(1, "drop-rows <any|all|thresh N>"); err != nil {
			return Step{}, err
		}
		s.Mode = strings.ToLower(args[0])
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return Step{}, fmt.Errorf("drop-rows: threshold %q is not a number", args[1])
			}
			s.Threshold = n
		}
	case OpDropColumns, OpOneHot, OpLabel:
		if err := need(1, s.Op+" <cols>"); err != nil {
			return Step{}, err
		}
		s.Columns = splitList(strings.Join(args, " "))
	case OpReset:
	default:
		return Step{}, fmt.Errorf("unknown op %q", s.Op)
	}
	if err := s.Validate(); err != nil {
		return Step{}, err
	}
	return s, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitArgs splits line on whitespace, honoring double-quoted tokens with Go escapes.
func SplitArgs(line string) ([]string, error) {
	var out []string
	s := strings.TrimSpace(line)
	for s != "" {
		if s[0] == '"' {
			q, err := strconv.QuotedPrefix(s)
			if err != nil {
				return nil, fmt.Errorf("unterminated quote in %q", line)
			}
			v, _ := strconv.Unquote(q)
			out = append(out, v)
			s = strings.TrimLeft(s[len(q):], " \t")
			continue
		}
		i := strings.IndexAny(s, " \t")
		if i < 0 {
			out = append(out, s)
			break
		}
		out = append(out, s[:i])
		s = strings.TrimLeft(s[i:], " \t")
	}
	return out, nil
}
