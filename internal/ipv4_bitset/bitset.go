package ipv4_bitset

import (
	"ip-filter/internal/ipv4_pool"
)

type (
	// Bitset remembers which addresses were already seen.
	Bitset struct {
		// 65 536 lazy shards, one per leading octet pair
		shards [1 << 16]*shard16
		unique uint64
	}
	shard16 struct {
		bits [1024]uint64 // 65536 bit => 1024 uint64 (8 KB)
	}
)

func New() *Bitset { return &Bitset{} }

func (b *Bitset) getOrCreate(hi uint16) *shard16 {
	if p := b.shards[hi]; p != nil {
		return p
	}
	n := &shard16{}
	b.shards[hi] = n

	return n
}

// SetIfNew set bit; true — new addr
func (b *Bitset) SetIfNew(a ipv4_pool.Address) bool {
	u32 := ToUint32(a)
	sh := b.getOrCreate(uint16(u32 >> 16))

	lo := u32 & 0xFFFF
	idx := lo >> 6
	mask := uint64(1) << (lo & 63)
	if sh.bits[idx]&mask != 0 {
		return false
	}
	sh.bits[idx] |= mask
	b.unique++

	return true
}

func (b *Bitset) Has(a ipv4_pool.Address) bool {
	u32 := ToUint32(a)
	sh := b.shards[u32>>16]
	if sh == nil {
		return false
	}
	lo := u32 & 0xFFFF
	return sh.bits[lo>>6]&(uint64(1)<<(lo&63)) != 0
}

func (b *Bitset) UniqueCount() uint64 { return b.unique }

// ToUint32 packs a with octet 0 in the high byte.
func ToUint32(a ipv4_pool.Address) uint32 {
	return uint32(a[0])<<24 | uint32(a[1])<<16 | uint32(a[2])<<8 | uint32(a[3])
}
