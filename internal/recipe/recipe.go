// Package recipe describes cleaning and encoding pipelines as data: YAML
// documents for batch runs and one-line steps for the interactive shell.
package recipe

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/dataprep-cli/internal/clean"
	"github.com/KaramelBytes/dataprep-cli/internal/store"
	"github.com/KaramelBytes/dataprep-cli/internal/utils"
)

// Operation names.
const (
	OpConvert     = "convert"
	OpFill        = "fill"
	OpDropRows    = "drop-rows"
	OpDropColumns = "drop-columns"
	OpOneHot      = "onehot"
	OpLabel       = "label"
	OpReset       = "reset"
)

// Step is one operation with its parameters. Column and Columns are merged.
type Step struct {
	Op        string   `yaml:"op"`
	Column    string   `yaml:"column,omitempty"`
	Columns   []string `yaml:"columns,omitempty"`
	Method    string   `yaml:"method,omitempty"`
	Value     *string  `yaml:"value,omitempty"`
	Mode      string   `yaml:"mode,omitempty"`
	Threshold int      `yaml:"threshold,omitempty"`
	Units     []string `yaml:"units,omitempty"`
}

// Recipe is an ordered list of steps.
type Recipe struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Steps       []Step `yaml:"steps"`
}

// Targets returns Column followed by Columns.
func (s Step) Targets() []string {
	var out []string
	if s.Column != "" {
		out = append(out, s.Column)
	}
	return append(out, s.Columns...)
}

// Validate checks that the step names a known op with the parameters it needs.
func (s Step) Validate() error {
	switch s.Op {
	case OpConvert, OpOneHot, OpLabel, OpDropColumns:
		if len(s.Targets()) == 0 {
			return fmt.Errorf("%s: no columns given", s.Op)
		}
	case OpFill:
		if len(s.Targets()) != 1 {
			return fmt.Errorf("fill: exactly one column required, got %d", len(s.Targets()))
		}
		m, err := clean.ParseFillMethod(s.Method)
		if err != nil {
			return err
		}
		if m == clean.FillConstant && s.Value == nil {
			return errors.New("fill: constant method needs a value")
		}
	case OpDropRows:
		m, err := clean.ParseDropMode(s.Mode)
		if err != nil {
			return err
		}
		if m == clean.DropThreshold && s.Threshold <= 0 {
			return errors.New("drop-rows: thresh mode needs a positive threshold")
		}
	case OpReset:
	case "":
		return errors.New("step has no op")
	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}
	return nil
}

// String renders the step in shell syntax; ParseStep reverses it.
func (s Step) String() string {
	parts := []string{s.Op}
	cols := quoteList(s.Targets())
	switch s.Op {
	case OpConvert:
		parts = append(parts, cols)
		if len(s.Units) > 0 {
			parts = append(parts, quoteList(s.Units))
		}
	case OpFill:
		parts = append(parts, cols, s.Method)
		if s.Value != nil {
			parts = append(parts, quote(*s.Value))
		}
	case OpDropRows:
		parts = append(parts, s.Mode)
		if s.Threshold > 0 {
			parts = append(parts, strconv.Itoa(s.Threshold))
		}
	case OpDropColumns, OpOneHot, OpLabel:
		parts = append(parts, cols)
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"") {
		return strconv.Quote(s)
	}
	return s
}

func quoteList(items []string) string { return quote(strings.Join(items, ",")) }

// Validate checks every step.
func (r *Recipe) Validate() error {
	for i, s := range r.Steps {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// Parse decodes and validates a YAML recipe.
func Parse(data []byte) (*Recipe, error) {
	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse recipe: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Load reads a recipe file.
func Load(path string) (*Recipe, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	return Parse(b)
}

// Save writes the recipe as YAML using an atomic write.
func (r *Recipe) Save(path string) error {
	b, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	return utils.SafeWriteFile(path, b)
}

// FromHistory rebuilds a recipe from the operations recorded by a store.
func FromHistory(name string, entries []store.Entry) (*Recipe, error) {
	r := &Recipe{Name: name}
	for _, e := range entries {
		s, err := ParseStep(e.Op)
		if err != nil {
			return nil, fmt.Errorf("history entry %q: %w", e.Op, err)
		}
		r.Steps = append(r.Steps, s)
	}
	return r, nil
}
