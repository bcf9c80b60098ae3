package ipv4_pool

import (
	"fmt"
	"iter"
)

// Store keeps a Pool and its reverse Index in lockstep and answers filters.
// Fill it from one goroutine; once filling stops it is safe for concurrent reads.
type Store struct {
	pool  *Pool
	index *Index
}

func NewStore() *Store {
	return &Store{
		pool:  NewPool(),
		index: NewIndex(),
	}
}

func (s *Store) Add(addr Address) {
	s.index.Record(s.pool.Insert(addr))
}

func (s *Store) All() iter.Seq[Address] { return s.pool.All() }
func (s *Store) Len() int               { return s.pool.Len() }
func (s *Store) Index() *Index          { return s.index }

// FilterPrefix returns the addresses whose leading octets equal prefix,
// largest first. Candidates are taken from the bucket of prefix[0].
func (s *Store) FilterPrefix(prefix []Octet) ([]Address, error) {
	if len(prefix) == 0 || len(prefix) > AddressLen {
		return nil, fmt.Errorf("%w: got %d", ErrPrefixLength, len(prefix))
	}
	b := s.index.bucketTree(prefix[0])
	if b == nil {
		return nil, nil
	}

	return collect(b, func(a Address) bool { return a.HasPrefix(prefix) }), nil
}

// FilterAny returns the addresses holding v at any position, largest first.
func (s *Store) FilterAny(v Octet) []Address { return s.index.Bucket(v) }
