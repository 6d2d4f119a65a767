package bitvec

import "fmt"

// Reader is a readable bit vector.  It is implemented by both Vector
// (in memory, r/w) and Disk (disk backed, ro)
type Reader interface {
	Size() uint
	Lookup(idx uint) (bool, error)
}

var _ Reader = (*Disk)(nil)
var _ Reader = (*BitVector)(nil)
var _ Reader = (*Vector[uint32])(nil)

// Lookup is the range checked form of At
func (v *Vector[W]) Lookup(idx uint) (bool, error) {
	if idx >= v.size {
		return false, fmt.Errorf("lookup %d in vector of %d bits: %w", idx, v.size, ErrOutOfRange)
	}
	return v.At(idx), nil
}
