// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package bitvec

import (
	"fmt"
	"io"
	"math/bits"
)

// Words returns a copy of the storage words.  Each word is loaded
// atomically but the copy as a whole is not a consistent snapshot
// while other goroutines are writing.
func (v *Vector[W]) Words() []W {
	out := make([]W, len(v.words))
	for i := range v.words {
		out[i] = loadWord(&v.words[i])
	}
	return out
}

// Count returns the number of set bits below Size()
func (v *Vector[W]) Count() (count uint) {
	v.eachWord(func(base uint, w uint64) bool {
		count += uint(bits.OnesCount64(w))
		return true
	})
	return
}

// NextSet returns the first set bit at or after from
func (v *Vector[W]) NextSet(from uint) (uint, bool) {
	if from >= v.size {
		return 0, false
	}
	wb := wordBits[W]()
	found, at := false, uint(0)
	first := from / wb
	for i := first; i < uint(len(v.words)); i++ {
		w := uint64(loadWord(&v.words[i]))
		if i == first {
			w &^= (uint64(1) << (from % wb)) - 1
		}
		if i == uint(len(v.words))-1 {
			w &= v.tailMask()
		}
		if w != 0 {
			found, at = true, i*wb+uint(bits.TrailingZeros64(w))
			break
		}
	}
	return at, found
}

// Each calls fn for every set bit below Size() in ascending order,
// stopping early if fn returns false
func (v *Vector[W]) Each(fn func(idx uint) bool) {
	v.eachWord(func(base uint, w uint64) bool {
		for w != 0 {
			if !fn(base + uint(bits.TrailingZeros64(w))) {
				return false
			}
			w &= w - 1
		}
		return true
	})
}

// ClearAll clears every bit.  Words are cleared one at a time, so this
// races with concurrent writers like any other multi word operation.
func (v *Vector[W]) ClearAll() {
	for i := range v.words {
		storeWord(&v.words[i], 0)
	}
}

// eachWord visits the loaded words with the bits at or beyond Size()
// masked off
func (v *Vector[W]) eachWord(fn func(base uint, w uint64) bool) {
	wb := wordBits[W]()
	last := len(v.words) - 1
	for i := range v.words {
		w := uint64(loadWord(&v.words[i]))
		if i == last {
			w &= v.tailMask()
		}
		if !fn(uint(i)*wb, w) {
			return
		}
	}
}

// tailMask selects the bits of the last word that lie below Size()
func (v *Vector[W]) tailMask() uint64 {
	rem := v.size % wordBits[W]()
	if rem == 0 {
		return ^uint64(0)
	}
	return (uint64(1) << rem) - 1
}

// DebugDump prints the non-zero words of the vector to w
func (v *Vector[W]) DebugDump(w io.Writer) {
	wb := wordBits[W]()
	fmt.Fprintf(w, "\n  %d bits in %d x %d bit words\n", v.size, len(v.words), wb)
	fmt.Fprintf(w, "    word  first set bits->\n")
	skipped := 0
	for i := range v.words {
		x := loadWord(&v.words[i])
		if x == 0 {
			skipped++
			continue
		}
		if skipped > 0 {
			fmt.Fprintf(w, "          ...\n")
			skipped = 0
		}
		fmt.Fprintf(w, "%8d  %8d %0*b\n", i, uint(i)*wb, int(wb), x)
	}
	if skipped > 0 {
		fmt.Fprintf(w, "          ...\n")
	}
}
