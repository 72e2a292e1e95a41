package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/dataprep-cli/internal/export"
	"github.com/KaramelBytes/dataprep-cli/internal/recipe"
	"github.com/KaramelBytes/dataprep-cli/internal/utils"
)

// defaultRecipeName is looked up from the input's directory upward when
// neither --recipe nor --step is given.
const defaultRecipeName = "dataprep.yaml"

var (
	runRead   readOptions
	runRecipe string
	runSteps  []string
	runFormat string
	runOutDir string
	runOutput string
	runQuiet  bool
	runJobs   int
)

var runCmd = &cobra.Command{
	Use:   "run <files...>",
	Short: "Apply a cleaning recipe to one or more files and export the results",
	Long: `run loads each file into its own session, applies the recipe steps in
order and exports the result. Steps come from --recipe, from repeated
--step flags (appended after the recipe), or from the nearest dataprep.yaml.
A failing step aborts that file; nothing is written for it. With --jobs,
files run concurrently, each in its own session.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		if runOutput != "" && len(files) > 1 {
			return fmt.Errorf("--output takes a single input file, got %d", len(files))
		}

		var format export.Format
		if runFormat != "" {
			if format, err = export.ParseFormat(runFormat); err != nil {
				return err
			}
		} else if runOutput == "" {
			if format, err = export.ParseFormat(settings().ExportFormat); err != nil {
				return err
			}
		}
		outDir := runOutDir
		if outDir == "" {
			outDir = settings().ExportDir
		}
		if runOutput == "" {
			if err := utils.EnsureDir(outDir); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		opt := recipe.Options{UnitTokens: settings().UnitTokens}
		jobs := runJobs
		if jobs < 1 {
			jobs = 1
		}

		// each file gets its own session; logs are buffered and printed in input order
		logs := make([]bytes.Buffer, len(files))
		eg, ctx := errgroup.WithContext(cmd.Context())
		eg.SetLimit(jobs)
		for i, path := range files {
			eg.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				return runFile(&logs[i], path, format, outDir, opt)
			})
		}
		err = eg.Wait()
		total := len(files)
		for i, path := range files {
			if runQuiet || logs[i].Len() == 0 {
				continue
			}
			fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			_, _ = logs[i].WriteTo(out)
		}
		return err
	},
}

// runFile applies the recipe to one input and exports the result.
func runFile(out io.Writer, path string, format export.Format, outDir string, opt recipe.Options) error {
	r, err := resolveRecipe(path)
	if err != nil {
		return err
	}
	st, err := runRead.openStore(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	outs, err := recipe.Run(st, r, opt)
	for _, o := range outs {
		fmt.Fprintf(out, "  ✓ %s: %s\n", o.Step, o.Message)
	}
	if err != nil {
		fmt.Fprintf(out, "  ✗ %v\n", err)
		return fmt.Errorf("%s: %w", path, err)
	}
	ds, err := st.Current()
	if err != nil {
		return err
	}
	dest := runOutput
	if dest == "" {
		dest = filepath.Join(outDir, export.FileName(path, format))
	}
	if err := export.ExportFile(dest, ds, format); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Fprintf(out, "✓ Wrote %s (%s)\n", dest, ds.Shape())
	return nil
}

// expandInputs resolves globs, drops duplicates and sorts the result.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

// resolveRecipe combines --recipe (or the nearest dataprep.yaml) with --step lines.
func resolveRecipe(input string) (*recipe.Recipe, error) {
	r := &recipe.Recipe{Name: "cli"}
	path := runRecipe
	if path == "" && len(runSteps) == 0 {
		p, err := utils.FindUpward(input, defaultRecipeName)
		if errors.Is(err, utils.ErrNotFound) {
			return nil, fmt.Errorf("no steps: pass --recipe or --step, or add %s next to the data", defaultRecipeName)
		}
		if err != nil {
			return nil, err
		}
		path = p
	}
	if path != "" {
		loaded, err := recipe.Load(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		r = loaded
	}
	for _, line := range runSteps {
		s, err := recipe.ParseStep(line)
		if err != nil {
			return nil, fmt.Errorf("--step %q: %w", line, err)
		}
		r.Steps = append(r.Steps, s)
	}
	return r, nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runRead.register(runCmd)
	f := runCmd.Flags()
	f.StringVarP(&runRecipe, "recipe", "r", "", "YAML recipe to apply")
	f.StringArrayVar(&runSteps, "step", nil, `step in shell syntax, e.g. "fill Price median" (repeatable)`)
	f.StringVarP(&runFormat, "format", "f", "", "output format: csv | tsv | xlsx | json | parquet (default from config or --output)")
	f.StringVar(&runOutDir, "out-dir", "", "directory for <name>_clean.<ext> outputs (default from config)")
	f.StringVarP(&runOutput, "output", "o", "", "exact output path for a single input; .gz/.zst compresses")
	f.BoolVar(&runQuiet, "quiet", false, "suppress progress and non-essential output")
	f.IntVarP(&runJobs, "jobs", "j", 1, "files processed concurrently")
}
