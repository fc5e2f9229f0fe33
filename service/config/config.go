package config

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	c "rvcalc/service/core"
)

const (
	CSVSink      = "csv"
	PostgresSink = "postgres"
	SQLiteSink   = "sqlite"

	DefaultPath = "config.yaml"
)

var KnownSinks = []string{CSVSink, PostgresSink, SQLiteSink}

type Config struct {
	Years        []int        `yaml:"years"`
	Intervals    []int        `yaml:"intervals"`
	DataDir      string       `yaml:"data_dir"`
	ResultsDir   string       `yaml:"results_dir"`
	Sinks        []string     `yaml:"sinks"`
	SQLitePath   string       `yaml:"sqlite_path"`
	Workers      int          `yaml:"workers"`
	YearWorkers  int          `yaml:"year_workers"`
	RollSelector string       `yaml:"roll_selector"`
	Server       ServerConfig `yaml:"server"`

	// secrets come from the environment, never the file
	DatabaseURL string `yaml:"-"`
}

type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

func Default() *Config {
	return &Config{
		Years:        []int{1990, 2001, 2007, 2018},
		Intervals:    []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 15, 20, 30, 45, 60, 90},
		DataDir:      "data",
		ResultsDir:   "results",
		Sinks:        []string{CSVSink},
		SQLitePath:   "results/variances.db",
		Workers:      c.DefaultWorkers,
		YearWorkers:  1,
		RollSelector: c.TradeCountSelector,
		Server: ServerConfig{
			Enabled: false,
			Addr:    c.DefaultAddr,
		},
	}
}

// NewConfig reads the yaml file over the defaults, keys missing from the file keep their default
func NewConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, err
	}

	config.DatabaseURL = os.Getenv("DATABASE_URL")

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}
	return config, nil
}

func (cfg *Config) Validate() error {
	if len(cfg.Years) == 0 {
		return fmt.Errorf("at least one year must be configured")
	}
	if err := c.ValidateIntervals(cfg.Intervals); err != nil {
		return err
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0")
	}
	if cfg.YearWorkers <= 0 {
		return fmt.Errorf("year workers must be greater than 0")
	}
	if _, err := c.RollSelectorByName(cfg.RollSelector); err != nil {
		return err
	}

	if len(cfg.Sinks) == 0 {
		return fmt.Errorf("at least one sink must be configured")
	}
	for _, sink := range cfg.Sinks {
		if !slices.Contains(KnownSinks, sink) {
			return fmt.Errorf("unknown sink '%s' (expected one of %v)", sink, KnownSinks)
		}
	}
	if cfg.HasSink(CSVSink) && cfg.ResultsDir == "" {
		return fmt.Errorf("results directory cannot be empty for the csv sink")
	}
	if cfg.HasSink(PostgresSink) && cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set for the postgres sink")
	}
	if cfg.HasSink(SQLiteSink) && cfg.SQLitePath == "" {
		return fmt.Errorf("sqlite path cannot be empty for the sqlite sink")
	}

	if cfg.Server.Enabled {
		if !cfg.HasSink(PostgresSink) && !cfg.HasSink(SQLiteSink) {
			return fmt.Errorf("the results server needs a postgres or sqlite sink to read from")
		}
		if cfg.Server.Addr == "" {
			return fmt.Errorf("server address cannot be empty")
		}
	}

	return nil
}

func (cfg *Config) HasSink(name string) bool {
	return slices.Contains(cfg.Sinks, name)
}

func (cfg *Config) Settings() c.Settings {
	return c.Settings{
		Years:       slices.Clone(cfg.Years),
		Intervals:   slices.Clone(cfg.Intervals),
		Workers:     cfg.Workers,
		YearWorkers: cfg.YearWorkers,
	}
}
