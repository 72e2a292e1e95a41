package parser

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
)

const (
	fixtureWorkbook = `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Notes" sheetId="1" r:id="rId1"/><sheet name="Data" sheetId="2" r:id="rId2"/></sheets></workbook>`
	fixtureRels = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="worksheet" Target="worksheets/sheet1.xml"/>
<Relationship Id="rId2" Type="worksheet" Target="/xl/worksheets/sheet2.xml"/></Relationships>`
	fixtureShared = `<?xml version="1.0" encoding="UTF-8"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><si><t>Company</t></si><si><t>Ram</t></si><si><t>Dell</t></si><si><r><t>H</t></r><r><t>P</t></r></si></sst>`
	fixtureSheet1 = `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="inlineStr"><is><t>note</t></is></c></row>
<row r="2"><c r="A2" t="inlineStr"><is><t>hello</t></is></c></row>
</sheetData></worksheet>`
	fixtureSheet2 = `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="inlineStr"><is><t>Touch</t></is></c></row>
<row r="2"><c r="A2" t="s"><v>2</v></c><c r="B2"><v>8</v></c><c r="C2" t="b"><v>1</v></c></row>
<row r="3"><c r="A3" t="s"><v>3</v></c><c r="C3" t="b"><v>0</v></c></row>
</sheetData></worksheet>`
)

func fixtureXLSX(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"xl/workbook.xml":            fixtureWorkbook,
		"xl/_rels/workbook.xml.rels": fixtureRels,
		"xl/sharedStrings.xml":       fixtureShared,
		"xl/worksheets/sheet1.xml":   fixtureSheet1,
		"xl/worksheets/sheet2.xml":   fixtureSheet2,
	}
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestXLSXSheetSelection(t *testing.T) {
	data := fixtureXLSX(t)

	opt := DefaultOptions()
	opt.SheetName = "data"
	ds, err := Parse("laptops.xlsx", data, opt)
	require.NoError(t, err)
	assert.Equal(t, []string{"Company", "Ram", "Touch"}, ds.Names())
	assert.Equal(t, 2, ds.NumRows())

	company, _ := ds.Column("Company")
	assert.Equal(t, "HP", company.Value(1).String())
	ram, _ := ds.Column("Ram")
	assert.Equal(t, dataset.KindInt, ram.Kind())
	assert.True(t, ram.Value(1).IsMissing())
	touch, _ := ds.Column("Touch")
	assert.Equal(t, dataset.KindBool, touch.Kind())
	assert.Equal(t, "false", touch.Value(1).String())

	opt = DefaultOptions()
	opt.SheetIndex = 2
	byIndex, err := Parse("laptops.xlsx", data, opt)
	require.NoError(t, err)
	assert.True(t, ds.Equal(byIndex))

	first, err := Parse("laptops.xlsx", data, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"note"}, first.Names())
}

func TestXLSXErrors(t *testing.T) {
	opt := DefaultOptions()
	opt.SheetName = "Missing"
	_, err := Parse("laptops.xlsx", fixtureXLSX(t), opt)
	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrParse)
	assert.Contains(t, err.Error(), "Notes, Data")

	_, err = Parse("broken.xlsx", []byte("not a zip"), DefaultOptions())
	assert.ErrorIs(t, err, dataset.ErrParse)
}

func TestNormalizeRelPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"styles.xml", "xl/styles.xml"},
	}
	for _, tt := range tests {
		if got := normalizeRelPath(tt.input); got != tt.expected {
			t.Errorf("normalizeRelPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestColIndexFromRef(t *testing.T) {
	assert.Equal(t, 0, colIndexFromRef("A1"))
	assert.Equal(t, 2, colIndexFromRef("C12"))
	assert.Equal(t, 26, colIndexFromRef("AA3"))
}

func TestNormalizeHeader(t *testing.T) {
	got := normalizeHeader([]string{" x ", "x", "", "x.1", "x"})
	assert.Equal(t, []string{"x", "x.1", "Unnamed: 2", "x.1.1", "x.2"}, got)
}
