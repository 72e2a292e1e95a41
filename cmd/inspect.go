package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataprep-cli/internal/utils"
)

var (
	insRead    readOptions
	insSection string
	insOutput  string
	insQuery   sectionQuery
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Report on the shape and quality of a CSV/TSV/XLSX/Parquet file",
	Long: `inspect loads a file and prints one read-only report section:
overview, dtypes, missing, duplicates, describe, values, groupby, corr,
crosstab, categories, head, tail, or all (overview, missing, describe, corr).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		st, err := insRead.openStore(path)
		if err != nil {
			return err
		}
		ds, err := st.Current()
		if err != nil {
			return err
		}
		q := insQuery
		if !cmd.Flags().Changed("sample-rows") {
			q.rows = settings().SampleRows
		}
		if !cmd.Flags().Changed("limit") {
			q.limit = settings().ValueCountsLimit
		}
		md, err := renderSection(path, ds, insSection, q)
		if err != nil {
			return err
		}
		if insOutput != "" {
			if err := utils.SafeWriteFile(insOutput, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s report to %s\n", insSection, insOutput)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	insRead.register(inspectCmd)
	f := inspectCmd.Flags()
	f.StringVarP(&insSection, "section", "s", "overview", "report section to print")
	f.StringVarP(&insOutput, "output", "o", "", "optional path to write the report (Markdown)")
	f.StringVarP(&insQuery.column, "column", "c", "", "column for describe, values, groupby (aggregated) and crosstab (rows)")
	f.StringVar(&insQuery.with, "with", "", "crosstab: column spread across the table")
	f.StringVar(&insQuery.groupBy, "group-by", "", "groupby: column whose values form the groups")
	f.StringVar(&insQuery.aggFn, "agg", "mean", "groupby: aggregation, mean or count")
	f.IntVar(&insQuery.limit, "limit", 20, "values/duplicates/corr: maximum entries (0 = all; default from config)")
	f.IntVar(&insQuery.rows, "sample-rows", 5, "overview/head/tail: rows to show (default from config)")
}
