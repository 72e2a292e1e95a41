package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
)

const (
	xlsxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>` +
		`<Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>` +
		`</Types>`
	xlsxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>` +
		`</Relationships>`
	xlsxWorkbookRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>` +
		`</Relationships>`
	xlsxWorkbook = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<sheets><sheet name="%s" sheetId="1" r:id="rId1"/></sheets></workbook>`
)

// WriteXLSX writes ds as a single-sheet workbook. Text uses inline
// strings, numbers and booleans are typed cells, missing cells are omitted.
func WriteXLSX(w io.Writer, ds *dataset.Dataset, sheet string) error {
	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		body []byte
	}{
		{"[Content_Types].xml", []byte(xlsxContentTypes)},
		{"_rels/.rels", []byte(xlsxRootRels)},
		{"xl/workbook.xml", []byte(fmt.Sprintf(xlsxWorkbook, escapeXML(sheet)))},
		{"xl/_rels/workbook.xml.rels", []byte(xlsxWorkbookRels)},
		{"xl/worksheets/sheet1.xml", sheetXML(ds)},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("xlsx %s: %w", p.name, err)
		}
		if _, err := f.Write(p.body); err != nil {
			return fmt.Errorf("xlsx %s: %w", p.name, err)
		}
	}
	return zw.Close()
}

func sheetXML(ds *dataset.Dataset) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`)
	b.WriteString(`<row r="1">`)
	for j, name := range ds.Names() {
		inlineCell(&b, cellRef(j, 1), name)
	}
	b.WriteString(`</row>`)
	for r := 0; r < ds.NumRows(); r++ {
		row := r + 2
		fmt.Fprintf(&b, `<row r="%d">`, row)
		for j, v := range ds.Row(r) {
			if v.IsMissing() {
				continue
			}
			ref := cellRef(j, row)
			switch v.Kind() {
			case dataset.KindInt:
				fmt.Fprintf(&b, `<c r="%s"><v>%s</v></c>`, ref, v.String())
			case dataset.KindFloat:
				if f, _ := v.AsFloat(); math.IsInf(f, 0) {
					inlineCell(&b, ref, v.String())
					continue
				}
				fmt.Fprintf(&b, `<c r="%s"><v>%s</v></c>`, ref, v.String())
			case dataset.KindBool:
				x, _ := v.AsBool()
				bit := "0"
				if x {
					bit = "1"
				}
				fmt.Fprintf(&b, `<c r="%s" t="b"><v>%s</v></c>`, ref, bit)
			default:
				inlineCell(&b, ref, v.String())
			}
		}
		b.WriteString(`</row>`)
	}
	b.WriteString(`</sheetData></worksheet>`)
	return b.Bytes()
}

func inlineCell(b *bytes.Buffer, ref, text string) {
	fmt.Fprintf(b, `<c r="%s" t="inlineStr"><is><t xml:space="preserve">%s</t></is></c>`, ref, escapeXML(text))
}

func escapeXML(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// cellRef renders a 0-based column and 1-based row as "A1" notation.
func cellRef(col, row int) string {
	var name []byte
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		name = append([]byte{byte('A' + (n-1)%26)}, name...)
	}
	return string(name) + strconv.Itoa(row)
}
