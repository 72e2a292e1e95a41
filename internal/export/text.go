package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
	"github.com/KaramelBytes/dataprep-cli/internal/utils"
)

// WriteCSV writes a header row and one record per row. Missing cells are empty.
func WriteCSV(w io.Writer, ds *dataset.Dataset, delim rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim
	if err := cw.Write(ds.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for r := 0; r < ds.NumRows(); r++ {
		if err := cw.Write(ds.RowStrings(r)); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// record is one JSON object with keys in column order.
type record struct {
	names []string
	cells []dataset.Value
}

func (r record) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.WriteString(jsonValue(r.cells[i]))
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func jsonValue(v dataset.Value) string {
	if v.IsMissing() {
		return "null"
	}
	switch v.Kind() {
	case dataset.KindFloat:
		f, _ := v.AsFloat()
		if math.IsInf(f, 0) {
			return "null"
		}
		return dataset.FormatFloat(f)
	case dataset.KindInt, dataset.KindBool:
		return v.String()
	}
	s, _ := json.Marshal(v.String())
	return string(s)
}

// WriteJSON writes the rows as an array of objects keyed by column name,
// in column order. Missing cells are null.
func WriteJSON(w io.Writer, ds *dataset.Dataset) error {
	names := ds.Names()
	recs := make([]record, ds.NumRows())
	for r := range recs {
		recs[r] = record{names: names, cells: ds.Row(r)}
	}
	b, err := utils.PrettyJSON(recs)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
