package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	UnitTokens       []string `mapstructure:"unit_tokens" yaml:"unit_tokens"`
	MissingTokens    []string `mapstructure:"missing_tokens" yaml:"missing_tokens"`
	Delimiter        string   `mapstructure:"delimiter" yaml:"delimiter"`
	SampleRows       int      `mapstructure:"sample_rows" yaml:"sample_rows"`
	ValueCountsLimit int      `mapstructure:"value_counts_limit" yaml:"value_counts_limit"`
	ExportFormat     string   `mapstructure:"export_format" yaml:"export_format"`
	ExportDir        string   `mapstructure:"export_dir" yaml:"export_dir"`
	LogLevel         string   `mapstructure:"log_level" yaml:"log_level"`
}

// Keys lists the configuration keys in display order.
var Keys = []string{
	"unit_tokens", "missing_tokens", "delimiter", "sample_rows",
	"value_counts_limit", "export_format", "export_dir", "log_level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("unit_tokens", []string{"GB", "kg", "GHz", "$"})
	v.SetDefault("missing_tokens", []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None", "<NA>", "#N/A"})
	v.SetDefault("delimiter", "")
	v.SetDefault("sample_rows", 5)
	v.SetDefault("value_counts_limit", 20)
	v.SetDefault("export_format", "csv")
	v.SetDefault("export_dir", ".")
	v.SetDefault("log_level", "warn")
}

// Default returns the built-in configuration without reading files or env.
func Default() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// Dir is the default configuration directory, ~/.dataprep.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".dataprep"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.dataprep/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DATAPREP")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read; a file that exists but does not parse is an error
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the enumerated and numeric keys.
func (c *Global) Validate() error {
	switch c.ExportFormat {
	case "csv", "tsv", "xlsx", "json", "parquet":
	default:
		return fmt.Errorf("invalid export_format: %s (use csv, tsv, xlsx, json or parquet)", c.ExportFormat)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", c.LogLevel)
	}
	if c.SampleRows < 0 {
		return fmt.Errorf("invalid sample_rows: %d", c.SampleRows)
	}
	if c.ValueCountsLimit < 0 {
		return fmt.Errorf("invalid value_counts_limit: %d", c.ValueCountsLimit)
	}
	if _, err := ParseDelimiter(c.Delimiter); err != nil {
		return err
	}
	return nil
}

// Set assigns key from its string form. List keys take comma-separated values.
func (c *Global) Set(key, val string) error {
	next := *c
	switch key {
	case "unit_tokens":
		next.UnitTokens = splitList(val)
	case "missing_tokens":
		next.MissingTokens = strings.Split(val, ",")
	case "delimiter":
		next.Delimiter = val
	case "sample_rows":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for sample_rows: %w", err)
		}
		next.SampleRows = i
	case "value_counts_limit":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for value_counts_limit: %w", err)
		}
		next.ValueCountsLimit = i
	case "export_format":
		next.ExportFormat = strings.ToLower(val)
	case "export_dir":
		next.ExportDir = val
	case "log_level":
		next.LogLevel = strings.ToLower(val)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Get renders key the way Set accepts it.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "unit_tokens":
		return strings.Join(c.UnitTokens, ","), nil
	case "missing_tokens":
		return strings.Join(c.MissingTokens, ","), nil
	case "delimiter":
		return c.Delimiter, nil
	case "sample_rows":
		return strconv.Itoa(c.SampleRows), nil
	case "value_counts_limit":
		return strconv.Itoa(c.ValueCountsLimit), nil
	case "export_format":
		return c.ExportFormat, nil
	case "export_dir":
		return c.ExportDir, nil
	case "log_level":
		return c.LogLevel, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// ParseDelimiter maps the delimiter setting to a rune; "" means auto.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported delimiter: %q (use ',' | ';' | '|' | 'tab')", s)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
