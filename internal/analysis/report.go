package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
)

// Markdown renders the overview in sectioned plain-text form.
func (o *Overview) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if o.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", o.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", o.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", o.Cols))
	b.WriteString(fmt.Sprintf("Missing cells: %d\n", o.Missing))
	b.WriteString(fmt.Sprintf("Duplicate rows: %d\n\n", o.Duplicates))

	b.WriteString("[SCHEMA]\n")
	for _, t := range o.Types {
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %d)\n", safeName(t.Name), t.Kind, t.NonNull, t.Missing))
	}
	if o.Head != nil && o.Head.NumRows() > 0 {
		b.WriteString("\n[HEAD]\n")
		b.WriteString(TableMarkdown(o.Head))
	}
	if o.Tail != nil && o.Tail.NumRows() > 0 {
		b.WriteString("\n[TAIL]\n")
		b.WriteString(TableMarkdown(o.Tail))
	}
	return b.String()
}

// TableMarkdown renders ds as a pipe table. Long cells are cut at 80 bytes.
func TableMarkdown(ds *dataset.Dataset) string {
	var b strings.Builder
	names := ds.Names()
	if len(names) == 0 {
		return fmt.Sprintf("(%d rows, no columns)\n", ds.NumRows())
	}
	b.WriteString("| ")
	for i, n := range names {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeVal(safeName(n)))
	}
	b.WriteString(" |\n|")
	for range names {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for r := 0; r < ds.NumRows(); r++ {
		b.WriteString("| ")
		for i, v := range ds.RowStrings(r) {
			if i > 0 {
				b.WriteString(" | ")
			}
			if len(v) > 80 {
				v = v[:77] + "..."
			}
			b.WriteString(safeVal(v))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

// TypesMarkdown renders the dtype table.
func TypesMarkdown(types []Descriptor) string {
	var b strings.Builder
	b.WriteString("[DATA TYPES]\n")
	for _, t := range types {
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %d)\n", safeName(t.Name), t.Kind, t.NonNull, t.Missing))
	}
	return b.String()
}

// MissingMarkdown renders the missing-values table.
func MissingMarkdown(stats []MissingStat) string {
	var b strings.Builder
	b.WriteString("[MISSING VALUES]\n")
	if len(stats) == 0 {
		b.WriteString("No missing values.\n")
		return b.String()
	}
	for _, s := range stats {
		b.WriteString(fmt.Sprintf("- %s: %d (%.2f%%)\n", safeName(s.Name), s.Count, s.Percent))
	}
	return b.String()
}

// DescribeMarkdown renders describe statistics, numeric columns first.
func DescribeMarkdown(sums []Summary) string {
	var b strings.Builder
	b.WriteString("[DESCRIBE]\n")
	for _, s := range sums {
		if !s.Numeric() {
			continue
		}
		b.WriteString(fmt.Sprintf("- %s: count %d, mean %s, std %s, min %s, 25%% %s, 50%% %s, 75%% %s, max %s",
			safeName(s.Column), s.Count, num(s.Mean), num(s.Std), num(s.Min), num(s.Q25), num(s.Median), num(s.Q75), num(s.Max)))
		if s.Outliers > 0 {
			b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", s.Outliers, OutlierThreshold))
		}
		b.WriteString("\n")
	}
	for _, s := range sums {
		if s.Numeric() {
			continue
		}
		b.WriteString(fmt.Sprintf("- %s: count %d, unique %d", safeName(s.Column), s.Count, s.Unique))
		if s.Freq > 0 {
			b.WriteString(fmt.Sprintf(", top %s, freq %d", safeVal(s.Top), s.Freq))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ValueCountsMarkdown renders a frequency list for one column.
func ValueCountsMarkdown(column string, counts []CategoryCount) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[VALUE COUNTS] %s\n", safeName(column)))
	for _, c := range counts {
		b.WriteString(fmt.Sprintf("- %s: %d\n", safeVal(c.Value), c.Count))
	}
	return b.String()
}

// GroupMarkdown renders a group-by aggregation.
func GroupMarkdown(group, agg string, fn AggFunc, res []GroupResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[GROUP-BY SUMMARY] %s(%s) by %s\n", fn, safeName(agg), safeName(group)))
	for _, r := range res {
		b.WriteString(fmt.Sprintf("- %s=%s (n=%d): %s\n", safeName(group), safeVal(r.Key.String()), r.Size, num(r.Value)))
	}
	return b.String()
}

// CorrMarkdown lists the strongest correlation pairs.
func CorrMarkdown(m *CorrMatrix, limit int) string {
	var b strings.Builder
	b.WriteString("[CORRELATIONS]\n")
	pairs := m.TopPairs(limit)
	if len(pairs) == 0 {
		b.WriteString("Not enough numeric columns.\n")
		return b.String()
	}
	for _, p := range pairs {
		b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
	}
	return b.String()
}

// CrosstabMarkdown renders a contingency table as a pipe table.
func CrosstabMarkdown(c *Contingency) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[CROSSTAB] %s x %s\n", safeName(c.RowColumn), safeName(c.ColColumn)))
	b.WriteString("| " + safeVal(c.RowColumn))
	for _, k := range c.ColKeys {
		b.WriteString(" | " + safeVal(k))
	}
	b.WriteString(" |\n|")
	for i := 0; i <= len(c.ColKeys); i++ {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for i, k := range c.RowKeys {
		b.WriteString("| " + safeVal(k))
		for _, n := range c.Counts[i] {
			b.WriteString(fmt.Sprintf(" | %d", n))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

func num(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return fmt.Sprintf("%.4g", f)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
