// Package config loads service settings from a YAML file and the command line.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/meikuraledutech/caseflow"
	"gopkg.in/yaml.v3"
)

// Log formats.
const (
	LogText = "text"
	LogJSON = "json"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreNATS     = "nats"
)

// Config holds everything the server needs to start.
type Config struct {
	Listen      string        `yaml:"listen"`
	Store       string        `yaml:"store"`
	DatabaseURL string        `yaml:"database_url"`
	NATSURL     string        `yaml:"nats_url"`
	NATSBucket  string        `yaml:"nats_bucket"`
	StepDelay   time.Duration `yaml:"step_delay"`
	AppendMode  string        `yaml:"append_mode"`
	RunSchedule string        `yaml:"run_schedule"`
	LogLevel    string        `yaml:"log_level"`
	LogFormat   string        `yaml:"log_format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Listen:     ":3000",
		Store:      StoreMemory,
		StepDelay:  caseflow.DefaultStepDelay,
		AppendMode: string(caseflow.AppendTail),
		LogLevel:   "info",
		LogFormat:  LogText,
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the selected backend is configured.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: store %q requires database_url", c.Store)
		}
	case StoreNATS:
		if c.NATSURL == "" {
			return fmt.Errorf("config: store %q requires nats_url", c.Store)
		}
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	if _, err := caseflow.ParseAppendMode(c.AppendMode); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.StepDelay < 0 {
		return fmt.Errorf("config: step_delay must not be negative")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case LogText, LogJSON:
	default:
		return fmt.Errorf("config: unknown log_format %q", c.LogFormat)
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return l, fmt.Errorf("config: log_level: %w", err)
	}
	return l, nil
}

// CLI is the command line surface. Any flag left empty keeps the value from
// the config file (or the default).
type CLI struct {
	Config      string `help:"Path to a YAML config file." type:"path" env:"CASEFLOW_CONFIG"`
	Listen      string `help:"HTTP listen address." env:"CASEFLOW_LISTEN"`
	Store       string `help:"Case store backend (memory, postgres, nats)." env:"CASEFLOW_STORE"`
	DatabaseURL string `help:"PostgreSQL connection string." name:"database-url" env:"DATABASE_URL"`
	NATSURL     string `help:"NATS server URL." name:"nats-url" env:"NATS_URL"`
	NATSBucket  string `help:"JetStream KV bucket name." name:"nats-bucket" env:"CASEFLOW_NATS_BUCKET"`
	StepDelay   string `help:"Delay between simulated run steps, e.g. 1200ms." env:"CASEFLOW_STEP_DELAY"`
	AppendMode  string `help:"Recording attachment point (tail, sink)." env:"CASEFLOW_APPEND_MODE"`
	RunSchedule string `help:"Cron expression for regression sweeps over all cases." env:"CASEFLOW_RUN_SCHEDULE"`
	LogLevel    string `help:"Log level (debug, info, warn, error)." env:"CASEFLOW_LOG_LEVEL"`
	LogFormat   string `help:"Log format (text, json)." env:"CASEFLOW_LOG_FORMAT"`
}

// Parse parses args (without the program name) into a validated Config.
func Parse(args []string) (Config, error) {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("caseflow"),
		kong.Description("Automation case flow-graph service."),
	)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if _, err := parser.Parse(args); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cli.Resolve()
}

// Resolve merges the file named by c.Config, then the non-empty flags.
func (c CLI) Resolve() (Config, error) {
	cfg := Default()
	if c.Config != "" {
		loaded, err := Load(c.Config)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	override(&cfg.Listen, c.Listen)
	override(&cfg.Store, c.Store)
	override(&cfg.DatabaseURL, c.DatabaseURL)
	override(&cfg.NATSURL, c.NATSURL)
	override(&cfg.NATSBucket, c.NATSBucket)
	override(&cfg.AppendMode, c.AppendMode)
	override(&cfg.RunSchedule, c.RunSchedule)
	override(&cfg.LogLevel, c.LogLevel)
	override(&cfg.LogFormat, c.LogFormat)
	if c.StepDelay != "" {
		d, err := time.ParseDuration(c.StepDelay)
		if err != nil {
			return Config{}, fmt.Errorf("config: step-delay: %w", err)
		}
		cfg.StepDelay = d
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
