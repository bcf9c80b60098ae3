package line_processor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"ip-filter/internal/ipv4_bitset"
	"ip-filter/internal/ipv4_pool"
)

const readerSize = 2 << 20 // 2MB

type (
	// LineProcessor reads "<dotted-quad>[\t<suffix>]" records into a store.
	LineProcessor struct {
		logger   *zap.Logger
		store    *ipv4_pool.Store
		distinct *ipv4_bitset.Bitset
		progress *Progress
	}
	Stats struct {
		Lines     int64 // lines consumed, the terminating empty line excluded
		Bytes     int64
		Addresses int64
		Unique    uint64 // distinct addresses seen so far
		Stopped   bool   // ingestion ended on an empty line
	}
)

func New(
	logger *zap.Logger,
	store *ipv4_pool.Store,
) *LineProcessor {
	return &LineProcessor{
		logger:   logger,
		store:    store,
		distinct: ipv4_bitset.New(),
		progress: NewProgress(logger),
	}
}

// Process ingests r until EOF or the first empty line. size is the input
// length in bytes when known, used only for progress reporting.
// Any malformed record aborts the whole run.
func (lp *LineProcessor) Process(ctx context.Context, r io.Reader, size int64) (Stats, error) {
	defer lp.progress.Run(size)()

	br := bufio.NewReaderSize(r, readerSize)
	var st Stats
	for {
		// gracefully stop if parent send cancel signal
		if err := ctx.Err(); err != nil {
			return st, err
		}

		line, err := readLine(br)
		if err != nil && !errors.Is(err, io.EOF) {
			return st, err
		}
		if len(line) == 0 && errors.Is(err, io.EOF) {
			return st, nil
		}

		record := trimLF(line)
		if len(record) == 0 {
			lp.logger.Debug("empty line, stop reading", zap.Int64("line", st.Lines+1))
			st.Stopped = true
			return st, nil
		}
		st.Lines++
		st.Bytes += int64(len(line))
		lp.progress.Add(int64(len(line)))

		addr, perr := ipv4_pool.Parse(string(cutSuffix(trimCR(record))))
		if perr != nil {
			return st, fmt.Errorf("line %d: %w", st.Lines, perr)
		}
		lp.store.Add(addr)
		st.Addresses++
		if lp.distinct.SetIfNew(addr) {
			st.Unique++
		}

		if errors.Is(err, io.EOF) {
			return st, nil
		}
	}
}

// readLine returns the next line including its '\n'. Lines longer than the
// reader buffer are stitched together.
func readLine(br *bufio.Reader) ([]byte, error) {
	line, err := br.ReadSlice('\n')
	if !errors.Is(err, bufio.ErrBufferFull) {
		return line, err
	}
	long := append([]byte(nil), line...)
	rest, err := br.ReadBytes('\n')

	return append(long, rest...), err
}

func trimLF(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		return b[:n-1]
	}
	return b
}

func trimCR(b []byte) []byte {
	for n := len(b); n > 0 && b[n-1] == '\r'; n-- {
		b = b[:n-1]
	}
	return b
}

// cutSuffix drops everything from the first tab on.
func cutSuffix(b []byte) []byte {
	if i := bytes.IndexByte(b, '\t'); i >= 0 {
		return b[:i]
	}
	return b
}
