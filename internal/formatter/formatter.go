package formatter

import (
	"bufio"
	"io"
	"iter"

	"ip-filter/internal/ipv4_pool"
)

// AppendAddress appends a as dot-joined decimal text.
func AppendAddress(b []byte, a ipv4_pool.Address) []byte { return a.AppendTo(b) }

// WriteAll writes one address per line, no separator after the last one.
func WriteAll(w io.Writer, addrs iter.Seq[ipv4_pool.Address]) error {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}

	var (
		buf   = make([]byte, 0, 16)
		first = true
	)
	for a := range addrs {
		if !first {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		first = false
		buf = AppendAddress(buf[:0], a)
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	if !ok {
		return bw.Flush()
	}
	return nil
}

// Join renders addrs the way WriteAll does.
func Join(addrs []ipv4_pool.Address) string {
	b := make([]byte, 0, len(addrs)*16)
	for i, a := range addrs {
		if i > 0 {
			b = append(b, '\n')
		}
		b = AppendAddress(b, a)
	}
	return string(b)
}
