package internal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ip-filter/internal/config"
	"ip-filter/internal/formatter"
	"ip-filter/internal/ipv4_pool"
	"ip-filter/internal/line_processor"
	"ip-filter/internal/logger"
	"ip-filter/internal/metrics"
	"ip-filter/internal/query"
)

type App struct {
	cfg     config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	store   *ipv4_pool.Store
	lp      *line_processor.LineProcessor
	queries []query.Query

	in     io.Reader
	inFile *os.File
	size   int64
	out    io.Writer
}

// NewApp validates cfg and opens the input. stdin is read when cfg.Input is
// empty or "-"; results go to stdout.
func NewApp(cfg config.Config, stdin io.Reader, stdout io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("cannot initialize zap logger: %w", err)
	}
	queries, err := query.ParseAll(cfg.Queries)
	if err != nil {
		return nil, err
	}

	store := ipv4_pool.NewStore()
	a := &App{
		cfg:     cfg,
		logger:  log,
		metrics: metrics.New(),
		store:   store,
		lp:      line_processor.New(log, store),
		queries: queries,
		in:      stdin,
		size:    -1,
		out:     stdout,
	}
	if cfg.UseStdin() {
		return a, nil
	}

	f, err := os.Open(cfg.Input)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("cannot open the file: %w", err)
	}
	a.in, a.inFile = f, f
	if fi, err := f.Stat(); err == nil && fi.Mode().IsRegular() {
		a.size = fi.Size()
	}

	return a, nil
}

func (a *App) Close() {
	if a.inFile != nil {
		_ = a.inFile.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("running ip_filter...", zap.String("input", a.cfg.Input), zap.Strings("queries", a.cfg.Queries))

	// context with os signals cancel chan
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.ingest(ctx); err != nil {
			return fmt.Errorf("ingest: %w", err)
		}
		results, err := query.Run(ctx, a.store, a.queries, a.cfg.Workers)
		if err != nil {
			return err
		}
		return a.write(results)
	})

	err := g.Wait()
	if a.cfg.MetricsFile != "" {
		if merr := a.metrics.WriteFile(a.cfg.MetricsFile); merr != nil {
			a.logger.Warn("metrics dump failed", zap.Error(merr))
		}
	}
	if err != nil {
		a.logger.Error("ip_filter returning an error", zap.Error(err))
		return err
	}

	a.logger.Info("ip_filter exited properly")

	return nil
}

func (a *App) ingest(ctx context.Context) error {
	start := time.Now()
	st, err := a.lp.Process(ctx, a.in, a.size)

	a.metrics.LinesRead.Add(float64(st.Lines))
	a.metrics.BytesRead.Add(float64(st.Bytes))
	a.metrics.AddressesIngested.Add(float64(st.Addresses))
	a.metrics.UniqueAddresses.Set(float64(st.Unique))
	a.metrics.IndexedOctets.Set(float64(a.store.Index().Len()))
	a.metrics.IngestSeconds.Set(time.Since(start).Seconds())
	if err != nil {
		return err
	}

	a.logger.Info("input ingested",
		zap.Int64("lines", st.Lines),
		zap.Int64("addresses", st.Addresses),
		zap.Uint64("unique", st.Unique),
		zap.Int("indexed_octets", a.store.Index().Len()),
		zap.Bool("stopped_on_empty_line", st.Stopped),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// write prints every result block followed by a newline.
func (a *App) write(results []query.Result) error {
	bw := bufio.NewWriter(a.out)
	for _, r := range results {
		a.metrics.QueriesTotal.WithLabelValues(r.Query.Kind.String()).Inc()
		a.metrics.QueryResultSize.WithLabelValues(r.Query.Raw).Set(float64(len(r.Addrs)))
		a.logger.Debug("query done", zap.String("query", r.Query.Raw), zap.Int("addresses", len(r.Addrs)))

		if err := formatter.WriteAll(bw, slices.Values(r.Addrs)); err != nil {
			return fmt.Errorf("write %q: %w", r.Query.Raw, err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("write %q: %w", r.Query.Raw, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func (a *App) Logger() *zap.Logger     { return a.logger }
func (a *App) Store() *ipv4_pool.Store { return a.store }
