package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/dataprep-cli/internal/parser"
	"github.com/KaramelBytes/dataprep-cli/internal/recipe"
)

const laptopsCSV = `Company,Ram,Price,OpSys
Dell,8GB,1000,Windows
HP,16GB,,Linux
Dell,8GB,1000,Windows
,4GB,700,
`

// resetFlags clears Changed state and values that persist between Execute calls.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and stdin, returning stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// mustRun is a helper to execute the root command with args that must succeed.
func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, "", args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func writeFixture(t *testing.T) (dir, path string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir = filepath.Join(home, "data")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path = filepath.Join(dir, "laptops.csv")
	if err := os.WriteFile(path, []byte(laptopsCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return dir, path
}

func TestCLI_InspectSections(t *testing.T) {
	_, path := writeFixture(t)

	out := mustRun(t, "inspect", path)
	for _, want := range []string{"[DATASET SUMMARY]", "File: laptops.csv", "Rows: 4", "Duplicate rows: 1", "- Price: integer (non-null 3, missing 1)", "[HEAD]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("overview missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "inspect", path, "--section", "values", "--column", "Company", "--limit", "1")
	if !strings.Contains(out, "- Dell: 2") || strings.Contains(out, "- HP: 1") {
		t.Fatalf("unexpected value counts:\n%s", out)
	}
	if !strings.Contains(out, "Distinct values: 2") {
		t.Fatalf("missing distinct count:\n%s", out)
	}

	out = mustRun(t, "inspect", path, "-s", "groupby", "--group-by", "Company", "-c", "Price")
	if !strings.Contains(out, "- Company=Dell (n=2): 1000") {
		t.Fatalf("unexpected group-by:\n%s", out)
	}

	out = mustRun(t, "inspect", path, "-s", "missing")
	if !strings.Contains(out, "- Company: 1 (25.00%)") {
		t.Fatalf("unexpected missing report:\n%s", out)
	}

	report := filepath.Join(t.TempDir(), "report.md")
	mustRun(t, "inspect", path, "-s", "all", "-o", report)
	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	for _, want := range []string{"[DATASET SUMMARY]", "[MISSING VALUES]", "[DESCRIBE]", "[CORRELATIONS]"} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("report missing %q", want)
		}
	}

	if _, err := execute(t, "", "inspect", path, "-s", "groupby", "--group-by", "Company", "-c", "OpSys"); err == nil {
		t.Fatalf("expected type mismatch for mean over text column")
	}
	if _, err := execute(t, "", "inspect", path, "-s", "bogus"); err == nil {
		t.Fatalf("expected unknown section error")
	}
}

func TestCLI_RunStepsToJSON(t *testing.T) {
	dir, path := writeFixture(t)
	dest := filepath.Join(dir, "clean.json")
	mustRun(t, "run", path, "-o", dest,
		"--step", "convert Ram GB",
		"--step", "fill Price mean",
		"--step", "onehot Company",
		"--step", "drop-rows any")

	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var recs []map[string]any
	if err := json.Unmarshal(b, &recs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("want 3 rows, got %d", len(recs))
	}
	if recs[1]["Price"] != 900.0 || recs[1]["Ram"] != 16.0 || recs[1]["Company_HP"] != 1.0 {
		t.Fatalf("unexpected row: %v", recs[1])
	}
	if !strings.HasPrefix(string(b), "[\n  {\n    \"Company_Dell\": 1,") {
		t.Fatalf("column order not preserved:\n%s", b)
	}
}

func TestCLI_RunRecipeFileAndDiscovery(t *testing.T) {
	dir, path := writeFixture(t)
	r := &recipe.Recipe{Name: "laptops", Steps: []recipe.Step{
		{Op: "convert", Column: "Ram"},
		{Op: "drop-columns", Columns: []string{"OpSys"}},
		{Op: "label", Columns: []string{"Company"}},
	}}
	if err := r.Save(filepath.Join(dir, defaultRecipeName)); err != nil {
		t.Fatalf("save recipe: %v", err)
	}
	outDir := filepath.Join(dir, "out")

	// no --recipe: dataprep.yaml next to the data is used
	out := mustRun(t, "run", path, "--format", "parquet", "--out-dir", outDir)
	if !strings.Contains(out, "[1/1] Processing laptops.csv...") {
		t.Fatalf("missing progress line:\n%s", out)
	}
	ds, err := parser.ParseFile(filepath.Join(outDir, "laptops_clean.parquet"), parser.DefaultOptions())
	if err != nil {
		t.Fatalf("reload parquet: %v", err)
	}
	if got := strings.Join(ds.Names(), ","); got != "Company,Ram,Price" {
		t.Fatalf("unexpected columns %s", got)
	}
	// byte order: Dell < HP < nan
	c, _ := ds.Column("Company")
	if v, _ := c.Value(3).AsInt(); v != 2 {
		t.Fatalf("missing company should get the last code, got %d", v)
	}

	mustRun(t, "run", path, "--recipe", filepath.Join(dir, defaultRecipeName), "--quiet", "-o", filepath.Join(outDir, "x.csv.gz"))
	if _, err := os.Stat(filepath.Join(outDir, "x.csv.gz")); err != nil {
		t.Fatalf("missing compressed output: %v", err)
	}
}

func TestCLI_RunConcurrentFiles(t *testing.T) {
	dir, _ := writeFixture(t)
	second := filepath.Join(dir, "tablets.csv")
	if err := os.WriteFile(second, []byte("Company,Ram\nApple,4GB\nSamsung,\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	outDir := filepath.Join(dir, "out")
	out := mustRun(t, "run", filepath.Join(dir, "*.csv"), "-j", "2", "--format", "csv", "--out-dir", outDir,
		"--step", "convert Ram", "--step", "fill Ram ffill")

	first := strings.Index(out, "[1/2] Processing laptops.csv...")
	next := strings.Index(out, "[2/2] Processing tablets.csv...")
	if first < 0 || next < first {
		t.Fatalf("progress not in input order:\n%s", out)
	}
	ds, err := parser.ParseFile(filepath.Join(outDir, "tablets_clean.csv"), parser.DefaultOptions())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	ram, _ := ds.Column("Ram")
	if v, _ := ram.Value(1).AsFloat(); v != 4 {
		t.Fatalf("forward fill not applied, got %v", ram.Value(1))
	}
}

func TestCLI_RunFailingStepWritesNothing(t *testing.T) {
	dir, path := writeFixture(t)
	dest := filepath.Join(dir, "bad.csv")
	_, err := execute(t, "", "run", path, "-o", dest, "--step", "fill Company median")
	if err == nil || !strings.Contains(err.Error(), "step 1") {
		t.Fatalf("expected step 1 failure, got %v", err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("output should not exist")
	}

	if _, err := execute(t, "", "run", filepath.Join(dir, "nope*.csv"), "--step", "reset"); err == nil {
		t.Fatalf("expected no-match error")
	}
	if _, err := execute(t, "", "run", path, "--step", "explode Price"); err == nil {
		t.Fatalf("expected parse error for unknown op")
	}
}

func TestCLI_ShellSession(t *testing.T) {
	dir, path := writeFixture(t)
	saved := filepath.Join(dir, "session.yaml")
	exported := filepath.Join(dir, "session.csv")
	script := strings.Join([]string{
		"missing",
		"fill Price median",
		"fill Company mean",
		`fill Company constant "Not listed"`,
		"values Company",
		"history",
		"save-recipe " + saved,
		"export " + exported,
		"reset",
		"quit",
	}, "\n")

	out, err := execute(t, script, "shell", path)
	if err != nil {
		t.Fatalf("shell failed: %v", err)
	}
	for _, want := range []string{
		"✓ Loaded",
		"[MISSING VALUES]",
		"filled 1 missing value(s) in Price with median; 0 remaining",
		"✗ fill \"Company\": type mismatch",
		"hint: convert the column to numbers first",
		"- Not listed: 1",
		"2. fill Company constant \"Not listed\"",
		"✓ Saved 2 step(s)",
		"restored the loaded dataset",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("shell output missing %q:\n%s", want, out)
		}
	}

	r, err := recipe.Load(saved)
	if err != nil {
		t.Fatalf("load saved recipe: %v", err)
	}
	if len(r.Steps) != 2 || r.Steps[0].Method != "median" {
		t.Fatalf("unexpected recipe: %+v", r.Steps)
	}
	ds, err := parser.ParseFile(exported, parser.DefaultOptions())
	if err != nil {
		t.Fatalf("reload export: %v", err)
	}
	if ds.MissingCount() != 1 {
		t.Fatalf("want only OpSys missing, got %d missing cells", ds.MissingCount())
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	mustRun(t, "config", "set", "sample_rows", "3")
	if _, err := os.Stat(filepath.Join(os.Getenv("HOME"), ".dataprep", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := mustRun(t, "config", "show")
	if !strings.Contains(out, "sample_rows: 3") || !strings.Contains(out, "export_format: csv") {
		t.Fatalf("unexpected config:\n%s", out)
	}
	if _, err := execute(t, "", "config", "set", "export_format", "docx"); err == nil {
		t.Fatalf("expected invalid value error")
	}
}
