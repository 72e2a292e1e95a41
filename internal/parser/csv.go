package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
)

type csvParser struct{}

func (csvParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvParser) Parse(content []byte, opt Options) (*dataset.Dataset, error) {
	if !utf8.Valid(content) {
		return nil, &dataset.ParseError{Err: errors.New("input is not valid UTF-8")}
	}
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(content))
	r.ReuseRecord = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		r.Comma = opt.Delimiter
	}

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &dataset.ParseError{Err: errors.New("empty input: no header row")}
		}
		return nil, csvError(err)
	}
	header = append([]string(nil), header...)
	ncol := len(header)

	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, csvError(err)
		}
		if len(rec) > ncol {
			line, _ := r.FieldPos(0)
			return nil, &dataset.ParseError{Line: line, Err: fmt.Errorf("row has %d fields, header has %d", len(rec), ncol)}
		}
		// missing trailing fields are padded as missing cells
		row := make([]string, ncol)
		copy(row, rec)
		for j := len(rec); j < ncol; j++ {
			row[j] = missingCell
		}
		rows = append(rows, row)
	}
	return build(header, rows, opt.MissingTokens)
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &dataset.ParseError{Line: pe.Line, Err: pe.Err}
	}
	return &dataset.ParseError{Err: err}
}
