package ipv4_pool

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedRecord = errors.New("malformed record")
	ErrOutOfRangeOctet = errors.New("octet out of range")
	ErrWrongArity      = errors.New("wrong number of octets")
	ErrPrefixLength    = errors.New("prefix must have 1 to 4 octets")
	// ErrUnknownFilterKey is never returned: a missing bucket yields an empty result.
	ErrUnknownFilterKey = errors.New("unknown filter key")
)

// ParseError describes which segment of a dotted-quad failed and why.
type ParseError struct {
	Input   string
	Segment int // -1 when the whole input is at fault (arity)
	Value   string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Segment < 0 {
		return fmt.Sprintf("parse %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("parse %q: segment %d %q: %v", e.Input, e.Segment, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
