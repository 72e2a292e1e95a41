package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
)

// ArrowSchema maps column kinds to nullable arrow fields.
func ArrowSchema(ds *dataset.Dataset) *arrow.Schema {
	fields := make([]arrow.Field, ds.NumCols())
	for j, c := range ds.Columns() {
		fields[j] = arrow.Field{Name: c.Name(), Type: arrowType(c.Kind()), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(k dataset.Kind) arrow.DataType {
	switch k {
	case dataset.KindInt:
		return arrow.PrimitiveTypes.Int64
	case dataset.KindFloat:
		return arrow.PrimitiveTypes.Float64
	case dataset.KindBool:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

// Record builds an arrow record holding every row of ds. The caller releases it.
func Record(ds *dataset.Dataset, mem memory.Allocator) arrow.Record {
	schema := ArrowSchema(ds)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	for j, c := range ds.Columns() {
		fb := b.Field(j)
		fb.Reserve(c.Len())
		for i := 0; i < c.Len(); i++ {
			v := c.Value(i)
			if v.IsMissing() {
				fb.AppendNull()
				continue
			}
			switch fb := fb.(type) {
			case *array.Int64Builder:
				n, _ := v.AsInt()
				fb.Append(n)
			case *array.Float64Builder:
				f, _ := v.AsFloat()
				fb.Append(f)
			case *array.BooleanBuilder:
				x, _ := v.AsBool()
				fb.Append(x)
			case *array.StringBuilder:
				fb.Append(v.String())
			}
		}
	}
	return b.NewRecord()
}

// WriteParquet writes ds as a single row group, Snappy compressed, with the
// arrow schema stored in the file metadata.
func WriteParquet(w io.Writer, ds *dataset.Dataset) error {
	mem := memory.NewGoAllocator()
	rec := Record(ds, mem)
	defer rec.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	writer, err := pqarrow.NewFileWriter(rec.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	if err := writer.Write(rec); err != nil {
		_ = writer.Close()
		return fmt.Errorf("write parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
