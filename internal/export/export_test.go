package export_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
	"github.com/KaramelBytes/dataprep-cli/internal/export"
	"github.com/KaramelBytes/dataprep-cli/internal/parser"
)

func sample() *dataset.Dataset {
	return dataset.MustNew(
		dataset.MustColumn("Company", dataset.KindText, dataset.Text("Dell"), dataset.Text("H\"P, Inc"), dataset.Missing()),
		dataset.MustColumn("Ram", dataset.KindFloat, dataset.Float(8), dataset.Float(16.5), dataset.Missing()),
		dataset.MustColumn("Units", dataset.KindInt, dataset.Int(3), dataset.Missing(), dataset.Int(-1)),
		dataset.MustColumn("Touch", dataset.KindBool, dataset.Bool(true), dataset.Bool(false), dataset.Missing()),
	)
}

func TestCSVRoundTrip(t *testing.T) {
	ds := sample()
	data, err := export.Encode(ds, export.FormatCSV)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Company,Ram,Units,Touch\nDell,8.0,3,true\n"))

	back, err := parser.Parse("out.csv", data, parser.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, ds.Equal(back), "got:\n%s", back)
}

func TestXLSXRoundTrip(t *testing.T) {
	ds := sample()
	data, err := export.Encode(ds, export.FormatXLSX)
	require.NoError(t, err)
	back, err := parser.Parse("out.xlsx", data, parser.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, ds.Equal(back), "got:\n%s", back)
}

func TestParquetRoundTrip(t *testing.T) {
	ds := sample()
	data, err := export.Encode(ds, export.FormatParquet)
	require.NoError(t, err)
	assert.Equal(t, "PAR1", string(data[:4]))
	back, err := parser.Parse("out.parquet", data, parser.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, ds.Equal(back), "got:\n%s", back)
}

func TestJSONRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteJSON(&buf, sample()))
	out := buf.String()
	assert.Less(t, strings.Index(out, `"Company"`), strings.Index(out, `"Ram"`))
	assert.Contains(t, out, `"Ram": 8.0`)
	assert.Contains(t, out, `"Units": null`)

	var recs []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &recs))
	require.Len(t, recs, 3)
	assert.Equal(t, `H"P, Inc`, recs[1]["Company"])
	assert.Equal(t, false, recs[1]["Touch"])
	assert.Nil(t, recs[2]["Company"])
}

func TestDetect(t *testing.T) {
	tests := []struct {
		path string
		f    export.Format
		c    export.Compression
	}{
		{"out.csv", export.FormatCSV, export.CompressNone},
		{"dir/out.JSON", export.FormatJSON, export.CompressNone},
		{"out.csv.gz", export.FormatCSV, export.CompressGzip},
		{"out.parquet.zst", export.FormatParquet, export.CompressZstd},
		{"out.txt", "", export.CompressNone},
	}
	for _, tt := range tests {
		f, c := export.Detect(tt.path)
		assert.Equal(t, tt.f, f, tt.path)
		assert.Equal(t, tt.c, c, tt.path)
	}
	_, err := export.ParseFormat("yaml")
	assert.Error(t, err)
}

func TestExportFileCompressed(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.csv.gz", "out.json.zst", "out.xlsx"} {
		p := filepath.Join(dir, name)
		require.NoError(t, export.ExportFile(p, sample(), ""))
		_, err := os.Stat(p + ".tmp")
		assert.True(t, os.IsNotExist(err))
	}
	back, err := parser.ParseFile(filepath.Join(dir, "out.csv.gz"), parser.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, sample().Equal(back))

	assert.Error(t, export.ExportFile(filepath.Join(dir, "out.txt"), sample(), ""))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "laptops_clean.json", export.FileName("/data/laptops.csv", export.FormatJSON))
	assert.Equal(t, "laptops_clean.csv", export.FileName("laptops.csv.gz", export.FormatCSV))
}
