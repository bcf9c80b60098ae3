package line_processor

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const interval = 5 * time.Second

type Progress struct {
	logger   *zap.Logger
	interval time.Duration
	bytes    atomic.Int64
	lines    atomic.Int64
	last     atomic.Int64
}

func NewProgress(
	logger *zap.Logger,
) *Progress {
	return &Progress{
		logger:   logger,
		interval: interval,
	}
}

func (p *Progress) Add(n int64) {
	_ = p.bytes.Add(n)
	_ = p.lines.Add(1)
}

func (p *Progress) Lines() int64 { return p.lines.Load() }
func (p *Progress) Bytes() int64 { return p.bytes.Load() }

// Run logs progress until stop is called. With totalSize <= 0 (pipes) only
// the line count is reported.
func (p *Progress) Run(totalSize int64) (stop func()) {
	t := time.NewTicker(p.interval)
	done := make(chan struct{})

	go func() {
		defer t.Stop()
		for {
			select {
			case <-t.C:
				var ms runtime.MemStats
				runtime.ReadMemStats(&ms)
				mem := fmt.Sprintf("alloc=%s heap_inuse=%s gc_cycles=%d", human(ms.Alloc), human(ms.HeapInuse), ms.NumGC)

				if totalSize <= 0 {
					p.logger.Sugar().Infof("progress: %d lines | %s", p.lines.Load(), mem)
					continue
				}
				d := p.bytes.Load()
				if d > totalSize {
					d = totalSize
				}
				pct := d * 100 / totalSize
				if pct > p.last.Load() {
					p.last.Store(pct)
					p.logger.Sugar().Infof("progress: %d%% (%d lines) | %s", pct, p.lines.Load(), mem)
				}
				if pct >= 100 {
					return
				}
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }
}

func human(b uint64) string {
	const (
		KB = 1 << 10
		MB = 1 << 20
		GB = 1 << 30
	)
	switch {
	case b >= GB:
		return fmt.Sprintf("%.2fGB", float64(b)/GB)
	case b >= MB:
		return fmt.Sprintf("%.2fMB", float64(b)/MB)
	case b >= KB:
		return fmt.Sprintf("%.2fKB", float64(b)/KB)
	default:
		return fmt.Sprintf("%dB", b)
	}
}
