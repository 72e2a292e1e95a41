package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
	"github.com/KaramelBytes/dataprep-cli/internal/export"
	"github.com/KaramelBytes/dataprep-cli/internal/recipe"
	"github.com/KaramelBytes/dataprep-cli/internal/store"
)

var shRead readOptions

const shellHelp = `Diagnostics (read-only):
  overview | dtypes | missing | duplicates | categories | corr
  describe [col]            head [n]            tail [n]
  values <col> [limit]      groupby <group> <col> [mean|count]
  crosstab <rows> <cols>
Steps (replace the working dataset, or leave it untouched on error):
  convert <cols> [units]    fill <col> <method> [value]
  drop-rows any|all|thresh N
  drop-columns <cols>       onehot <cols>       label <cols>
  reset
Session:
  load <file>   history   export <path> [format]   save-recipe <path>   help   quit
Column lists are comma separated; quote names with spaces.
`

var errQuit = errors.New("quit")

var shellCmd = &cobra.Command{
	Use:   "shell <file>",
	Short: "Open an interactive cleaning session on a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := shRead.openStore(args[0])
		if err != nil {
			return err
		}
		sess := newShellSession(st, cmd.OutOrStdout())
		ds, _ := st.Current()
		fmt.Fprintf(sess.out, "✓ Loaded %s (%s). Type 'help' for commands.\n", args[0], ds.Shape())
		return sess.serve(cmd.InOrStdin())
	},
}

// shellSession drives one Store from text commands.
type shellSession struct {
	st     *store.Store
	out    io.Writer
	opt    recipe.Options
	prompt string
}

func newShellSession(st *store.Store, out io.Writer) *shellSession {
	return &shellSession{
		st:     st,
		out:    out,
		opt:    recipe.Options{UnitTokens: settings().UnitTokens},
		prompt: "dataprep> ",
	}
}

// serve reads commands until EOF or quit. Command errors are printed and
// the session continues.
func (s *shellSession) serve(in io.Reader) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Fprint(s.out, s.prompt)
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return sc.Err()
		}
		err := s.exec(sc.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(s.out, "✗ %v\n", err)
			if hint := describeError(err); hint != "" {
				fmt.Fprintf(s.out, "  hint: %s\n", hint)
			}
		}
	}
}

func (s *shellSession) exec(line string) error {
	args, err := recipe.SplitArgs(line)
	if err != nil {
		return err
	}
	if len(args) == 0 || strings.HasPrefix(args[0], "#") {
		return nil
	}
	verb := strings.ToLower(args[0])
	rest := args[1:]
	switch verb {
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		fmt.Fprint(s.out, shellHelp)
		return nil
	case "load":
		if len(rest) != 1 {
			return errors.New("usage: load <file>")
		}
		if err := s.st.LoadFile(rest[0]); err != nil {
			return err
		}
		ds, _ := s.st.Current()
		fmt.Fprintf(s.out, "✓ Loaded %s (%s)\n", rest[0], ds.Shape())
		return nil
	case "history":
		h := s.st.History()
		if len(h) == 0 {
			fmt.Fprintln(s.out, "No steps applied.")
		}
		for i, e := range h {
			fmt.Fprintf(s.out, "%d. %s -> %d rows × %d columns\n", i+1, e.Op, e.Rows, e.Cols)
		}
		return nil
	case "export":
		return s.export(rest)
	case "save-recipe":
		if len(rest) != 1 {
			return errors.New("usage: save-recipe <path>")
		}
		r, err := recipe.FromHistory(s.st.Name(), s.st.History())
		if err != nil {
			return err
		}
		if err := r.Save(rest[0]); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "✓ Saved %d step(s) to %s\n", len(r.Steps), rest[0])
		return nil
	case recipe.OpConvert, recipe.OpFill, recipe.OpDropRows, recipe.OpDropColumns,
		recipe.OpOneHot, recipe.OpLabel, recipe.OpReset:
		step, err := recipe.ParseStep(line)
		if err != nil {
			return err
		}
		o, err := recipe.Apply(s.st, step, s.opt)
		if err != nil {
			logger.Debug("shell step failed", zap.String("step", line), zap.Error(err))
			return err
		}
		ds, _ := s.st.Current()
		fmt.Fprintf(s.out, "✓ %s (%s)\n", o.Message, ds.Shape())
		return nil
	}
	return s.diagnose(verb, rest)
}

func (s *shellSession) diagnose(verb string, args []string) error {
	ds, err := s.st.Current()
	if err != nil {
		return err
	}
	q := sectionQuery{
		rows:  settings().SampleRows,
		limit: settings().ValueCountsLimit,
		aggFn: "mean",
	}
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}
	switch verb {
	case "describe", "stats":
		q.column = arg(0)
	case "values", "value-counts":
		if len(args) == 0 {
			return errors.New("usage: values <col> [limit]")
		}
		q.column = args[0]
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("limit %q is not a number", args[1])
			}
			q.limit = n
		}
	case "groupby", "group-by":
		if len(args) < 2 {
			return errors.New("usage: groupby <group> <col> [mean|count]")
		}
		q.groupBy, q.column = args[0], args[1]
		if len(args) > 2 {
			q.aggFn = args[2]
		}
	case "crosstab":
		if len(args) != 2 {
			return errors.New("usage: crosstab <rows> <cols>")
		}
		q.column, q.with = args[0], args[1]
	case "head", "tail":
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("row count %q is not a non-negative number", args[0])
			}
			q.rows = n
		}
	case "overview", "summary", "dtypes", "types", "info", "missing", "duplicates", "dups",
		"categories", "corr", "correlations":
	default:
		return fmt.Errorf("unknown command %q (type 'help')", verb)
	}
	md, err := renderSection(s.st.Name(), ds, verb, q)
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, md)
	return nil
}

func (s *shellSession) export(args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return errors.New("usage: export <path> [csv|tsv|xlsx|json|parquet]")
	}
	var f export.Format
	if len(args) == 2 {
		var err error
		if f, err = export.ParseFormat(args[1]); err != nil {
			return err
		}
	} else if detected, _ := export.Detect(args[0]); detected == "" {
		f = export.Format(settings().ExportFormat)
	}
	ds, err := s.st.Current()
	if err != nil {
		return err
	}
	if err := export.ExportFile(args[0], ds, f); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "✓ Wrote %s (%s)\n", args[0], ds.Shape())
	return nil
}

// describeError maps the error taxonomy to a hint printed after the message.
func describeError(err error) string {
	switch {
	case errors.Is(err, dataset.ErrUnknownColumn):
		return "check the column name with 'dtypes'"
	case errors.Is(err, dataset.ErrTypeMismatch):
		return "convert the column to numbers first, or pick mode/constant"
	case errors.Is(err, dataset.ErrEmptySelection):
		return "name at least one column"
	case errors.Is(err, dataset.ErrEmptyColumn):
		return "every value is missing; use constant or drop the column"
	case errors.Is(err, dataset.ErrNameCollision):
		return "rename or drop the clashing column before encoding"
	}
	return ""
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shRead.register(shellCmd)
}
