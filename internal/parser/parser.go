package parser

import (
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
)

// Parser turns raw file content into a Dataset.
type Parser interface {
	CanParse(filename string) bool
	Parse(content []byte, opt Options) (*dataset.Dataset, error)
}

// Options controls how raw tabular input is read.
type Options struct {
	// Delimiter for CSV. If 0, ',' is used, or '\t' for .tsv files.
	Delimiter rune
	// MissingTokens are cell texts read as missing. Compared after trimming spaces.
	MissingTokens []string
	// SheetName selects an XLSX sheet by name (case-insensitive).
	SheetName string
	// SheetIndex selects an XLSX sheet by 1-based index when SheetName is empty.
	SheetIndex int
}

// DefaultMissingTokens mirrors the usual NA spellings found in exported spreadsheets.
var DefaultMissingTokens = []string{"", "NA", "N/A", "n/a", "NaN", "nan", "null", "NULL", "None", "<NA>", "#N/A"}

// DefaultOptions returns reasonable defaults for loading a dataset.
func DefaultOptions() Options {
	return Options{
		MissingTokens: DefaultMissingTokens,
		SheetIndex:    1,
	}
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ParseFile reads path and parses it with the parser matching its name.
func ParseFile(path string, opt Options) (*dataset.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(path, data, opt)
}

// Parse selects a parser based on name and parses content. Compressed
// content (.gz, .zst) is unwrapped first. Unknown extensions are read as CSV.
func Parse(name string, content []byte, opt Options) (*dataset.Dataset, error) {
	name, content, err := decompress(name, content)
	if err != nil {
		return nil, err
	}
	for _, p := range registry {
		if p.CanParse(name) {
			return p.Parse(content, optionsFor(name, opt))
		}
	}
	return csvParser{}.Parse(content, optionsFor(name, opt))
}

func optionsFor(name string, opt Options) Options {
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(name)
	}
	if opt.MissingTokens == nil {
		opt.MissingTokens = DefaultMissingTokens
	}
	return opt
}

func sniffDelimiter(name string) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	return ','
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
	Register(parquetParser{})
}
