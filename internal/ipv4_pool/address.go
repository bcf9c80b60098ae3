package ipv4_pool

import (
	"errors"
	"strconv"
	"strings"
)

const (
	AddressLen = 4
	Delimiter  = '.'
)

type (
	Octet   = uint8
	Address [AddressLen]Octet
)

// Compare orders addresses component-wise, position 0 most significant.
func (a Address) Compare(b Address) int {
	for i := 0; i < AddressLen; i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// Contains reports whether v occurs at any position.
func (a Address) Contains(v Octet) bool {
	for _, o := range a {
		if o == v {
			return true
		}
	}
	return false
}

// HasPrefix reports whether the leading len(prefix) octets equal prefix.
func (a Address) HasPrefix(prefix []Octet) bool {
	if len(prefix) > AddressLen {
		return false
	}
	for i, v := range prefix {
		if a[i] != v {
			return false
		}
	}
	return true
}

// AppendTo appends the dotted-quad text of a to b.
func (a Address) AppendTo(b []byte) []byte {
	for i, o := range a {
		if i > 0 {
			b = append(b, Delimiter)
		}
		b = strconv.AppendUint(b, uint64(o), 10)
	}
	return b
}

func (a Address) String() string {
	return string(a.AppendTo(make([]byte, 0, 15)))
}

// Parse parses a dotted-quad such as "10.0.0.1".
func Parse(s string) (Address, error) { return ParseWithDelimiter(s, Delimiter) }

// ParseWithDelimiter splits s on every occurrence of delim and converts each
// segment to an octet. Exactly four segments are required.
func ParseWithDelimiter(s string, delim byte) (Address, error) {
	var (
		addr Address
		n    int
		rest = s
	)
	for {
		seg, tail, more := strings.Cut(rest, string(delim))
		if n == AddressLen {
			return Address{}, &ParseError{Input: s, Segment: -1, Err: ErrWrongArity}
		}
		o, err := ParseOctet(seg)
		if err != nil {
			return Address{}, &ParseError{Input: s, Segment: n, Value: seg, Err: err}
		}
		addr[n] = o
		n++
		if !more {
			break
		}
		rest = tail
	}
	if n != AddressLen {
		return Address{}, &ParseError{Input: s, Segment: -1, Err: ErrWrongArity}
	}

	return addr, nil
}

// ParseOctet converts a base-10 integer in [0, 255].
func ParseOctet(s string) (Octet, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, ErrOutOfRangeOctet
		}
		return 0, ErrMalformedRecord
	}
	if v < 0 || v > 255 {
		return 0, ErrOutOfRangeOctet
	}
	return Octet(v), nil
}
