package ipv4_pool

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/google/btree"
)

// Index maps an octet value to the entries holding it at any position.
type Index struct {
	buckets [256]*btree.BTreeG[Entry] // lazy
	present *bitset.BitSet
}

func NewIndex() *Index { return &Index{present: bitset.New(256)} }

// Record files e under each distinct octet of its address, once per bucket.
func (x *Index) Record(e Entry) {
	for i, v := range e.Addr {
		if repeated(e.Addr, i) {
			continue
		}
		b := x.buckets[v]
		if b == nil {
			b = newTree()
			x.buckets[v] = b
			x.present.Set(uint(v))
		}
		b.ReplaceOrInsert(e)
	}
}

// repeated reports whether a[i] already occurred at an earlier position.
func repeated(a Address, i int) bool {
	for j := 0; j < i; j++ {
		if a[j] == a[i] {
			return true
		}
	}
	return false
}

// Bucket returns the addresses containing v, largest first; nil when v was never seen.
func (x *Index) Bucket(v Octet) []Address {
	b := x.buckets[v]
	if b == nil {
		return nil
	}
	return collect(b, nil)
}

// Values returns the octets that own a bucket, ascending.
func (x *Index) Values() []Octet {
	out := make([]Octet, 0, x.present.Count())
	for i, ok := x.present.NextSet(0); ok; i, ok = x.present.NextSet(i + 1) {
		out = append(out, Octet(i))
	}
	return out
}

// Len returns the number of non-empty buckets.
func (x *Index) Len() int { return int(x.present.Count()) }

func (x *Index) bucketTree(v Octet) *btree.BTreeG[Entry] { return x.buckets[v] }
