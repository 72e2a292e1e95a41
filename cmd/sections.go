package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/dataprep-cli/internal/analysis"
	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
)

// sections lists the read-only reports in the order "all" prints them.
var sections = []string{"overview", "missing", "describe", "corr"}

// sectionQuery holds the parameters a report section may need.
type sectionQuery struct {
	column  string
	with    string
	groupBy string
	aggFn   string
	limit   int
	rows    int
}

// renderSection runs one diagnostic against ds. It never changes ds.
func renderSection(name string, ds *dataset.Dataset, section string, q sectionQuery) (string, error) {
	switch strings.ToLower(section) {
	case "all", "":
		var b strings.Builder
		for i, s := range sections {
			if i > 0 {
				b.WriteString("\n")
			}
			out, err := renderSection(name, ds, s, q)
			if err != nil {
				return "", err
			}
			b.WriteString(out)
		}
		return b.String(), nil
	case "overview", "summary":
		o := analysis.OverviewReport(ds, q.rows)
		o.Name = filepath.Base(name)
		return o.Markdown(), nil
	case "dtypes", "types", "info":
		return analysis.TypesMarkdown(analysis.TypeInfo(ds)), nil
	case "missing":
		return analysis.MissingMarkdown(analysis.MissingSummary(ds)), nil
	case "duplicates", "dups":
		dups := analysis.DuplicateRows(ds, q.limit)
		out := fmt.Sprintf("[DUPLICATES]\nDuplicate rows: %d\n", analysis.DuplicateCount(ds))
		if dups.NumRows() > 0 {
			out += analysis.TableMarkdown(dups)
		}
		return out, nil
	case "describe", "stats":
		var cols []string
		if q.column != "" {
			cols = []string{q.column}
		}
		sums, err := analysis.Describe(ds, cols...)
		if err != nil {
			return "", err
		}
		return analysis.DescribeMarkdown(sums), nil
	case "values", "value-counts":
		if q.column == "" {
			return "", fmt.Errorf("values: --column is required")
		}
		counts, err := analysis.ValueCounts(ds, q.column, q.limit)
		if err != nil {
			return "", err
		}
		n, _ := analysis.NUnique(ds, q.column)
		return analysis.ValueCountsMarkdown(q.column, counts) + fmt.Sprintf("Distinct values: %d\n", n), nil
	case "groupby", "group-by":
		if q.groupBy == "" || q.column == "" {
			return "", fmt.Errorf("groupby: --group-by and --column are required")
		}
		fn, err := analysis.ParseAggFunc(q.aggFn)
		if err != nil {
			return "", err
		}
		res, err := analysis.GroupAggregate(ds, q.groupBy, q.column, fn)
		if err != nil {
			return "", err
		}
		return analysis.GroupMarkdown(q.groupBy, q.column, fn, res), nil
	case "corr", "correlations":
		return analysis.CorrMarkdown(analysis.Correlations(ds), q.limit), nil
	case "crosstab":
		if q.column == "" || q.with == "" {
			return "", fmt.Errorf("crosstab: --column and --with are required")
		}
		c, err := analysis.Crosstab(ds, q.column, q.with)
		if err != nil {
			return "", err
		}
		return analysis.CrosstabMarkdown(c), nil
	case "categories":
		cls := analysis.Classify(ds)
		var b strings.Builder
		b.WriteString("[COLUMN KINDS]\n")
		b.WriteString(fmt.Sprintf("Numeric: %s\n", joinOrNone(cls.Numeric)))
		b.WriteString(fmt.Sprintf("Categorical: %s\n", joinOrNone(cls.Categorical)))
		b.WriteString(fmt.Sprintf("With missing values: %s\n", joinOrNone(analysis.ColumnsWithMissing(ds))))
		b.WriteString(fmt.Sprintf("Multi-category: %s\n", joinOrNone(analysis.MultiCategoryColumns(ds))))
		return b.String(), nil
	case "head":
		return "[HEAD]\n" + analysis.TableMarkdown(ds.Head(q.rows)), nil
	case "tail":
		return "[TAIL]\n" + analysis.TableMarkdown(ds.Tail(q.rows)), nil
	}
	return "", fmt.Errorf("unknown section %q (use overview, dtypes, missing, duplicates, describe, values, groupby, corr, crosstab, categories, head, tail or all)", section)
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
