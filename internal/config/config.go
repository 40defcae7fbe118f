package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "INTERVAL_TRAINER"

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var (
	ExportFormats = []string{"json", "csv", "yaml", "toml"}

	ErrInvalidConfig = errors.New("invalid config")
)

type Config struct {
	DataDir string
	Backend string
	Profile string

	LogFile   string
	LogLevel  string
	LogJSON   bool
	LogStdout bool

	Bell         bool
	FinalSeconds bool

	ExportFormat string
	ExportOut    string
	ImportToken  string
	ImportCards  string
}

// BatchMode reports whether the run should export or import and exit
// instead of starting the terminal UI.
func (c *Config) BatchMode() bool {
	return c.ExportFormat != "" || c.ImportToken != "" || c.ImportCards != ""
}

func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is empty", ErrInvalidConfig)
	}
	switch c.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.Backend)
	}
	if c.ExportFormat != "" {
		known := false
		for _, f := range ExportFormats {
			if f == c.ExportFormat {
				known = true
			}
		}
		if !known {
			return fmt.Errorf("%w: unknown export format %q (want one of %s)",
				ErrInvalidConfig, c.ExportFormat, strings.Join(ExportFormats, ", "))
		}
	}
	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".interval-trainer"
	}
	return filepath.Join(home, ".interval-trainer")
}

// NewFlagSet declares every command line flag. Flag names map to viper keys
// through BindFlags.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "config file (yaml, toml or json)")
	fs.String("data-dir", defaultDataDir(), "directory holding cards, profiles and history")
	fs.String("backend", BackendFile, "storage backend: file or sqlite")
	fs.String("profile", "", "profile to make active on start")
	fs.String("log-file", "", "log file (defaults to <data-dir>/interval-trainer.log)")
	fs.String("log-level", "info", "log level")
	fs.Bool("log-json", false, "log as JSON")
	fs.Bool("log-stdout", false, "also log to stdout (batch mode only)")
	fs.Bool("bell", true, "ring the terminal bell on cues")
	fs.Bool("final-seconds", true, "cue the last three seconds of each phase")
	fs.String("export-format", "", "export and exit: json, csv, yaml or toml")
	fs.String("export-out", "", "export destination (defaults to stdout)")
	fs.String("import", "", "import a share token and exit")
	fs.String("import-cards", "", "import cards from a yaml or toml file, or a json backup, and exit")
	return fs
}

var flagKeys = map[string]string{
	"data-dir":      "data_dir",
	"backend":       "storage.backend",
	"profile":       "profile",
	"log-file":      "log.file",
	"log-level":     "log.level",
	"log-json":      "log.json",
	"log-stdout":    "log.stdout",
	"bell":          "cues.bell",
	"final-seconds": "cues.final_seconds",
	"export-format": "export.format",
	"export-out":    "export.out",
	"import":        "import.token",
	"import-cards":  "import.cards",
}

func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// Load parses args, then layers flags over environment over config file over
// defaults.
func Load(args []string) (*Config, error) {
	fs := NewFlagSet("interval-trainer")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := BindFlags(v, fs); err != nil {
		return nil, err
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		DataDir:      v.GetString("data_dir"),
		Backend:      strings.ToLower(v.GetString("storage.backend")),
		Profile:      v.GetString("profile"),
		LogFile:      v.GetString("log.file"),
		LogLevel:     v.GetString("log.level"),
		LogJSON:      v.GetBool("log.json"),
		LogStdout:    v.GetBool("log.stdout"),
		Bell:         v.GetBool("cues.bell"),
		FinalSeconds: v.GetBool("cues.final_seconds"),
		ExportFormat: strings.ToLower(v.GetString("export.format")),
		ExportOut:    v.GetString("export.out"),
		ImportToken:  v.GetString("import.token"),
		ImportCards:  v.GetString("import.cards"),
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, "interval-trainer.log")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
