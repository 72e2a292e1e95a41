package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cfgpkg "github.com/KaramelBytes/dataprep-cli/internal/config"
	"github.com/KaramelBytes/dataprep-cli/internal/parser"
	"github.com/KaramelBytes/dataprep-cli/internal/store"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
	// Process logger; a no-op until loadConfig runs
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "dataprep",
	Short: "dataprep: inspect, clean and encode tabular datasets",
	Long: `dataprep loads a CSV, TSV, XLSX or Parquet file into an in-memory session,
reports on its shape and quality, applies cleaning and encoding steps, and
exports the result as CSV, XLSX, JSON records or Parquet.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.dataprep/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging on stderr")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	l, err := newLogger(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: logger setup failed: %v\n", err)
		return
	}
	logger = l
}

// newLogger builds a console logger on stderr at the given level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.DisableStacktrace = !debug
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// settings returns the loaded configuration, or defaults when loading failed.
func settings() *cfgpkg.Global {
	if cfg == nil {
		cfg = cfgpkg.Default()
	}
	return cfg
}

// readOptions are the flags shared by commands that load a dataset.
type readOptions struct {
	delimiter  string
	sheetName  string
	sheetIndex int
}

func (o *readOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab' (default from config, else by extension)")
	cmd.Flags().StringVar(&o.sheetName, "sheet-name", "", "XLSX: sheet name to load")
	cmd.Flags().IntVar(&o.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func (o *readOptions) parserOptions() (parser.Options, error) {
	c := settings()
	opt := parser.DefaultOptions()
	if c.MissingTokens != nil {
		opt.MissingTokens = c.MissingTokens
	}
	d := c.Delimiter
	if o.delimiter != "" {
		d = o.delimiter
	}
	r, err := cfgpkg.ParseDelimiter(d)
	if err != nil {
		return opt, err
	}
	opt.Delimiter = r
	opt.SheetName = o.sheetName
	if o.sheetIndex > 0 {
		opt.SheetIndex = o.sheetIndex
	}
	return opt, nil
}

// openStore creates a session and loads path into it.
func (o *readOptions) openStore(path string) (*store.Store, error) {
	opt, err := o.parserOptions()
	if err != nil {
		return nil, err
	}
	st := store.New(store.WithLogger(logger), store.WithParserOptions(opt))
	if err := st.LoadFile(path); err != nil {
		return nil, err
	}
	return st, nil
}
