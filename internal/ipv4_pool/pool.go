package ipv4_pool

import (
	"iter"

	"github.com/google/btree"
)

const degree = 32

// Entry is one inserted address. Seq keeps exact duplicates apart.
type Entry struct {
	Addr Address
	Seq  uint64
}

// descending by address, duplicates in insertion order
func lessEntry(a, b Entry) bool {
	if c := a.Addr.Compare(b.Addr); c != 0 {
		return c > 0
	}
	return a.Seq < b.Seq
}

func newTree() *btree.BTreeG[Entry] { return btree.NewG(degree, lessEntry) }

// Pool is a multiset of addresses kept in descending lexicographic order.
type Pool struct {
	tree *btree.BTreeG[Entry]
	seq  uint64
}

func NewPool() *Pool { return &Pool{tree: newTree()} }

func (p *Pool) Insert(addr Address) Entry {
	e := Entry{Addr: addr, Seq: p.seq}
	p.seq++
	p.tree.ReplaceOrInsert(e)

	return e
}

// All yields every address, largest first. Each call walks the current contents.
func (p *Pool) All() iter.Seq[Address] { return ascend(p.tree) }

func (p *Pool) Len() int { return p.tree.Len() }

func ascend(t *btree.BTreeG[Entry]) iter.Seq[Address] {
	return func(yield func(Address) bool) {
		t.Ascend(func(e Entry) bool { return yield(e.Addr) })
	}
}

func collect(t *btree.BTreeG[Entry], keep func(Address) bool) []Address {
	var out []Address
	t.Ascend(func(e Entry) bool {
		if keep == nil || keep(e.Addr) {
			out = append(out, e.Addr)
		}
		return true
	})
	return out
}
