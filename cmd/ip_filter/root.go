package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ip-filter/internal"
	"ip-filter/internal/config"
)

// errReported marks a failure the app already logged.
var errReported = errors.New("reported")

type options struct {
	configPath  string
	input       string
	queries     []string
	workers     int
	metricsFile string
	logLevel    string
	logFile     string
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "ip_filter",
		Short: "Sort and filter IPv4 addresses read line by line",
		Long: `ip_filter reads "<a.b.c.d>[<TAB>anything]" lines until EOF or the first empty
line, then prints the results of each query, one address per line, largest first.

Queries:
  all               every address
  prefix:A[.B[.C[.D]]]  addresses starting with the given octets
  any:V             addresses holding V in any position`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			app, err := internal.NewApp(cfg, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("init app failed: %w", err)
			}
			defer app.Close()

			if err = app.Run(cmd.Context()); err != nil {
				app.Logger().Sugar().Errorf("ip_filter stopped with error: %v", err)
				return fmt.Errorf("%w: %w", errReported, err)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "path to YAML configuration file")
	f.StringVarP(&opts.input, "file", "f", "", `input file, "-" for stdin (default stdin)`)
	f.StringArrayVarP(&opts.queries, "query", "q", nil, "query to run, repeatable (default all, prefix:1, prefix:46.70, any:46)")
	f.IntVar(&opts.workers, "workers", 0, "concurrent query workers (default number of CPUs)")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus text metrics to this file")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&opts.logFile, "log-file", "", "log to a rotated file instead of stderr")

	return cmd
}

// loadConfig applies explicitly set flags over the config file and defaults.
func loadConfig(cmd *cobra.Command, opts options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}

	f := cmd.Flags()
	if f.Changed("file") {
		cfg.Input = opts.input
	}
	if f.Changed("query") {
		cfg.Queries = opts.queries
	}
	if f.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if f.Changed("metrics-file") {
		cfg.MetricsFile = opts.metricsFile
	}
	if f.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if f.Changed("log-file") {
		cfg.Logging.Path = opts.logFile
	}

	return cfg, cfg.Validate()
}
