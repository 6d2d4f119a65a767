// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package bitvec

// Vector is a fixed size vector of bits backed by atomic words of
// type W.  Individual bits may be read, set and cleared concurrently
// without external locking, and any bit may be used as a spinlock.
//
// Operations never span more than one word, so a reader looking at
// two bits without other synchronization may observe them from
// different points in time.
//
// Indices are not range checked on the hot path: passing idx >= Size()
// is a caller error.  Use Lookup for a checked read.
type Vector[W Word] struct {
	size  uint
	words []W
}

// BitVector is a Vector over 64 bit words, the default granularity
type BitVector = Vector[uint64]

// New allocates a BitVector of size bits, all clear
func New(size uint) *BitVector {
	return NewOf[uint64](size)
}

// NewOf allocates a Vector of size bits stored in words of type W
func NewOf[W Word](size uint) *Vector[W] {
	return &Vector[W]{
		size:  size,
		words: make([]W, wordsFor[W](size)),
	}
}

// FromWords builds a Vector holding a copy of words.  The size of the
// resulting vector is len(words) * W, which may be larger than the
// number of bits the caller cares about.
func FromWords[W Word](words []W) *Vector[W] {
	v := &Vector[W]{
		size:  uint(len(words)) * wordBits[W](),
		words: make([]W, len(words)),
	}
	copy(v.words, words)
	return v
}

func wordsFor[W Word](size uint) uint {
	wb := wordBits[W]()
	return (size + wb - 1) / wb
}

// locate maps a bit index onto its word and the single bit mask
// selecting it within that word
func (v *Vector[W]) locate(idx uint) (*W, W) {
	wb := wordBits[W]()
	return &v.words[idx/wb], W(1) << (idx % wb)
}

// Size returns the number of bits in the vector
func (v *Vector[W]) Size() uint {
	return v.size
}

// WordCount returns the number of storage words
func (v *Vector[W]) WordCount() int {
	return len(v.words)
}

// At reports whether bit idx is set
func (v *Vector[W]) At(idx uint) bool {
	w, mask := v.locate(idx)
	return loadWord(w)&mask != 0
}

// Set sets bit idx to 1.  Setting an already set bit has no effect.
func (v *Vector[W]) Set(idx uint) {
	w, mask := v.locate(idx)
	orWord(w, mask)
}

// Unset clears bit idx.  Clearing an already clear bit has no effect.
func (v *Vector[W]) Unset(idx uint) {
	w, mask := v.locate(idx)
	andWord(w, ^mask)
}

// TryLock attempts to move bit idx from 0 to 1.  It returns true only
// if this call made the transition, and returns false without
// touching storage as soon as the bit is seen set.
//
// The whole word is compared and swapped, so activity on other bits of
// the same word can force retries here.
func (v *Vector[W]) TryLock(idx uint) bool {
	w, mask := v.locate(idx)
	old := loadWord(w)
	for old&mask == 0 {
		if casWord(w, old, old|mask) {
			return true
		}
		old = loadWord(w)
	}
	return false
}

// Lock spins until bit idx is acquired.  There is no timeout and no
// fairness; see LockContext for a bounded wait.
func (v *Vector[W]) Lock(idx uint) {
	for !v.TryLock(idx) {
	}
}

// Unlock clears bit idx.  Ownership is not tracked: any caller may
// unlock any bit, whether or not it holds it.
func (v *Vector[W]) Unlock(idx uint) {
	v.Unset(idx)
}

// Reset discards the current storage and reallocates size clear bits.
// The caller must have exclusive access to the vector.
func (v *Vector[W]) Reset(size uint) {
	v.size = size
	v.words = make([]W, wordsFor[W](size))
}

// Swap exchanges size and storage with other.  The caller must have
// exclusive access to both vectors.
func (v *Vector[W]) Swap(other *Vector[W]) {
	v.size, other.size = other.size, v.size
	v.words, other.words = other.words, v.words
}

// Move hands the storage of v over to a new Vector and leaves v empty.
// The caller must have exclusive access to v.
func (v *Vector[W]) Move() *Vector[W] {
	moved := &Vector[W]{size: v.size, words: v.words}
	v.size, v.words = 0, nil
	return moved
}
