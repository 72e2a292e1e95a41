package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
)

type parquetParser struct{}

func (parquetParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".parquet")
}

// Parse reads every row group into memory. Integer and floating-point
// columns of any width map to integer and float, booleans to boolean,
// everything else to text via its string form.
func (parquetParser) Parse(content []byte, _ Options) (*dataset.Dataset, error) {
	mem := memory.NewGoAllocator()
	pf, err := file.NewParquetReader(bytes.NewReader(content), file.WithReadProps(parquet.NewReaderProperties(mem)))
	if err != nil {
		return nil, &dataset.ParseError{Err: fmt.Errorf("open parquet: %w", err)}
	}
	defer pf.Close()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, &dataset.ParseError{Err: fmt.Errorf("create arrow reader: %w", err)}
	}
	table, err := fr.ReadTable(context.Background())
	if err != nil {
		return nil, &dataset.ParseError{Err: fmt.Errorf("read parquet: %w", err)}
	}
	defer table.Release()

	names := make([]string, table.NumCols())
	for j := range names {
		names[j] = table.Schema().Field(j).Name
	}
	names = normalizeHeader(names)
	cols := make([]*dataset.Column, table.NumCols())
	for j := range cols {
		col, err := arrowColumn(names[j], table.Column(j))
		if err != nil {
			return nil, &dataset.ParseError{Err: err}
		}
		cols[j] = col
	}
	d, err := dataset.NewSized(int(table.NumRows()), cols...)
	if err != nil {
		return nil, &dataset.ParseError{Err: err}
	}
	return d, nil
}

func arrowColumn(name string, col *arrow.Column) (*dataset.Column, error) {
	kind := kindOf(col.DataType())
	vals := make([]dataset.Value, 0, col.Len())
	for _, chunk := range col.Data().Chunks() {
		for i := 0; i < chunk.Len(); i++ {
			if chunk.IsNull(i) {
				vals = append(vals, dataset.Missing())
				continue
			}
			vals = append(vals, arrowValue(chunk, i, kind))
		}
	}
	return dataset.NewColumn(name, kind, vals)
}

func kindOf(t arrow.DataType) dataset.Kind {
	switch t.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32:
		return dataset.KindInt
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64, arrow.UINT64:
		return dataset.KindFloat
	case arrow.BOOL:
		return dataset.KindBool
	}
	return dataset.KindText
}

func arrowValue(arr arrow.Array, i int, kind dataset.Kind) dataset.Value {
	switch a := arr.(type) {
	case *array.Int8:
		return dataset.Int(int64(a.Value(i)))
	case *array.Int16:
		return dataset.Int(int64(a.Value(i)))
	case *array.Int32:
		return dataset.Int(int64(a.Value(i)))
	case *array.Int64:
		return dataset.Int(a.Value(i))
	case *array.Uint8:
		return dataset.Int(int64(a.Value(i)))
	case *array.Uint16:
		return dataset.Int(int64(a.Value(i)))
	case *array.Uint32:
		return dataset.Int(int64(a.Value(i)))
	case *array.Uint64:
		return dataset.Float(float64(a.Value(i)))
	case *array.Float16:
		return dataset.Float(float64(a.Value(i).Float32()))
	case *array.Float32:
		return dataset.Float(float64(a.Value(i)))
	case *array.Float64:
		return dataset.Float(a.Value(i))
	case *array.Boolean:
		return dataset.Bool(a.Value(i))
	case *array.String:
		return dataset.Text(a.Value(i))
	case *array.LargeString:
		return dataset.Text(a.Value(i))
	}
	if kind != dataset.KindText {
		return dataset.Missing()
	}
	return dataset.Text(arr.ValueStr(i))
}
