// Package export serializes a dataset to delimited text, spreadsheet,
// JSON records or Parquet, optionally wrapped in gzip or zstd.
package export

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
	"github.com/KaramelBytes/dataprep-cli/internal/utils"
)

// Format is an output file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatTSV     Format = "tsv"
	FormatXLSX    Format = "xlsx"
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
)

// Compression wraps the encoded bytes.
type Compression string

const (
	CompressNone Compression = ""
	CompressGzip Compression = "gz"
	CompressZstd Compression = "zst"
)

// ParseFormat accepts a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case FormatCSV, FormatTSV, FormatXLSX, FormatJSON, FormatParquet:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q (want csv, tsv, xlsx, json or parquet)", s)
}

// Detect infers format and compression from a file name such as
// "clean.csv.gz". An unknown extension yields an empty format.
func Detect(path string) (Format, Compression) {
	name := strings.ToLower(filepath.Base(path))
	comp := CompressNone
	switch {
	case strings.HasSuffix(name, ".gz"):
		comp = CompressGzip
		name = strings.TrimSuffix(name, ".gz")
	case strings.HasSuffix(name, ".zst"):
		comp = CompressZstd
		name = strings.TrimSuffix(name, ".zst")
	}
	f, err := ParseFormat(filepath.Ext(name))
	if err != nil {
		return "", comp
	}
	return f, comp
}

// Encode serializes ds in the given format.
func Encode(ds *dataset.Dataset, f Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatCSV:
		err = WriteCSV(&buf, ds, ',')
	case FormatTSV:
		err = WriteCSV(&buf, ds, '\t')
	case FormatXLSX:
		err = WriteXLSX(&buf, ds, "Sheet1")
	case FormatJSON:
		err = WriteJSON(&buf, ds)
	case FormatParquet:
		err = WriteParquet(&buf, ds)
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Compress wraps data with the given compression.
func Compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressNone:
		return data, nil
	case CompressGzip:
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return buf.Bytes(), nil
	case CompressZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
	}
	return nil, fmt.Errorf("unsupported compression %q", c)
}

// ExportFile writes ds to path. An empty format is inferred from the path;
// a trailing .gz or .zst compresses the output. The write is atomic.
func ExportFile(path string, ds *dataset.Dataset, f Format) error {
	detected, comp := Detect(path)
	if f == "" {
		f = detected
	}
	if f == "" {
		return fmt.Errorf("cannot infer export format from %q", filepath.Base(path))
	}
	data, err := Encode(ds, f)
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	if data, err = Compress(data, comp); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, data)
}

// FileName builds an output name for an input file, e.g. "laptops.csv" with
// FormatJSON gives "laptops_clean.json".
func FileName(input string, f Format) string {
	base := filepath.Base(input)
	for _, suf := range []string{".gz", ".zst"} {
		base = strings.TrimSuffix(base, suf)
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + "_clean." + string(f)
}
