package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"ip-filter/internal/logger"
	"ip-filter/internal/query"
)

var ErrConfigInvalid = errors.New("invalid configuration")

// StdinPath selects standard input.
const StdinPath = "-"

type Config struct {
	Input       string        `yaml:"input"`
	Queries     []string      `yaml:"queries"`
	Workers     int           `yaml:"workers"`
	MetricsFile string        `yaml:"metrics_file"`
	Logging     logger.Config `yaml:"logging"`
}

func Default() Config {
	return Config{
		Input:   StdinPath,
		Queries: append([]string(nil), query.Defaults...),
		Workers: runtime.NumCPU(),
		Logging: logger.Config{
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrConfigInvalid, path, err)
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if len(c.Queries) == 0 {
		return fmt.Errorf("%w: field=queries value=%v", ErrConfigInvalid, c.Queries)
	}
	if _, err := query.ParseAll(c.Queries); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: field=workers value=%d", ErrConfigInvalid, c.Workers)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	return nil
}

func (c Config) UseStdin() bool { return c.Input == "" || c.Input == StdinPath }
