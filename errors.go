package bitvec

import "errors"

var (
	// ErrOutOfRange is returned by checked accessors for an index at or
	// beyond the size of the vector
	ErrOutOfRange = errors.New("bit index out of range")

	// ErrIncompatibleVersion is returned when a serialized vector was
	// written with a different on disk format version
	ErrIncompatibleVersion = errors.New("incompatible file format")

	// ErrWordSizeMismatch is returned when a serialized vector uses a
	// different word width than the vector it is read into
	ErrWordSizeMismatch = errors.New("word size mismatch")

	// ErrCorrupt is returned when a serialized vector's header and
	// payload disagree about its layout
	ErrCorrupt = errors.New("corrupt bit vector stream")

	// ErrCompressed is returned by Disk for files whose payload is
	// compressed and therefore not randomly addressable
	ErrCompressed = errors.New("compressed payload cannot be read in place")
)
