package bitvec

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/bits-and-blooms/bitset"
)

// ToBitSet copies the vector into a non-atomic bitset.BitSet of the
// same length.  Each word is loaded atomically; the copy as a whole is
// not a snapshot.
func (v *Vector[W]) ToBitSet() *bitset.BitSet {
	packed := make([]uint64, (v.size+63)/64)
	v.eachWord(func(base uint, w uint64) bool {
		if base/64 < uint(len(packed)) {
			packed[base/64] |= w << (base % 64)
		}
		return true
	})
	return bitset.FromWithLength(v.size, packed)
}

// FromBitSet builds a BitVector with the length and contents of b
func FromBitSet(b *bitset.BitSet) *BitVector {
	v := New(b.Len())
	copy(v.words, b.Words())
	if n := len(v.words); n > 0 {
		v.words[n-1] &= v.tailMask()
	}
	return v
}

// ToRoaring returns the set bits of the vector as a compressed bitmap,
// convenient for persisting sparse vectors
func (v *Vector[W]) ToRoaring() *roaring64.Bitmap {
	bm := roaring64.New()
	v.Each(func(idx uint) bool {
		bm.Add(uint64(idx))
		return true
	})
	return bm
}

// FromRoaring builds a BitVector of size bits with every member of bm
// below size set
func FromRoaring(size uint, bm *roaring64.Bitmap) *BitVector {
	v := New(size)
	it := bm.Iterator()
	for it.HasNext() {
		x := it.Next()
		if x >= uint64(size) {
			break
		}
		v.Set(uint(x))
	}
	return v
}
