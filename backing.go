// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package bitvec

import (
	"encoding/binary"
	"fmt"
	"io"
)

// diskBacking reads individual little endian words of a serialized
// vector straight from its file
type diskBacking struct {
	start     int64
	wordBytes int
	f         io.ReaderAt
}

func (b diskBacking) word(i uint64) (uint64, error) {
	var val [8]byte
	buf := val[:b.wordBytes]
	n, err := b.f.ReadAt(buf, b.start+int64(i)*int64(b.wordBytes))
	if err != nil {
		return 0, fmt.Errorf("failed to read word %d from bit vector backing: %w", i, err)
	}
	if n != b.wordBytes {
		return 0, fmt.Errorf("short read: %d/%d", n, b.wordBytes)
	}
	if b.wordBytes == 4 {
		return uint64(binary.LittleEndian.Uint32(buf)), nil
	}
	return binary.LittleEndian.Uint64(buf), nil
}
