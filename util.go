// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package bitvec

import (
	"encoding/binary"
	"io"
	"unsafe"
)

var isLittleEndian bool

func init() {
	buf := []byte{0x1, 0x0}
	val := (*uint16)(unsafe.Pointer(unsafe.SliceData(buf)))
	isLittleEndian = *val == uint16(1)
}

func unsafeWordSliceToBytes[W Word](space []W) []byte {
	data := (*byte)(unsafe.Pointer(unsafe.SliceData(space)))
	return unsafe.Slice(data, len(space)*int(wordBits[W]()/BitsPerByte))
}

func writeWordSlice[W Word](w io.Writer, v []W) (n int64, err error) {
	if err = binary.Write(w, binary.LittleEndian, uint64(len(v))); err != nil {
		return
	}
	n += 8
	if isLittleEndian {
		data := unsafeWordSliceToBytes(v)
		var np int
		np, err = w.Write(data)
		n += int64(np)
	} else {
		err = binary.Write(w, binary.LittleEndian, v)
		if err == nil {
			n += int64(len(v)) * int64(wordBits[W]()/BitsPerByte)
		}
	}
	return
}

// readChunkWords bounds how many words readWordSlice allocates ahead of
// the data actually arriving, so a lying header cannot force a huge
// allocation
const readChunkWords = 1 << 16

// readWordSlice reads a length prefixed word slice, refusing lengths
// that do not match cfg
func readWordSlice[W Word](r io.Reader, cfg Config) (v []W, n int64, err error) {
	var length uint64
	if err = binary.Read(r, binary.LittleEndian, &length); err != nil {
		return
	}
	n += 8
	if err = cfg.checkWordCount(length); err != nil {
		return
	}
	wordBytes := int64(wordBits[W]() / BitsPerByte)
	chunk := make([]W, min(length, readChunkWords))
	v = make([]W, 0, len(chunk))
	for remaining := length; remaining > 0; {
		buf := chunk[:min(remaining, readChunkWords)]
		if isLittleEndian {
			var np int
			np, err = io.ReadFull(r, unsafeWordSliceToBytes(buf))
			n += int64(np)
		} else {
			err = binary.Read(r, binary.LittleEndian, buf)
			if err == nil {
				n += int64(len(buf)) * wordBytes
			}
		}
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, n, err
		}
		v = append(v, buf...)
		remaining -= uint64(len(buf))
	}
	return
}

// countingWriter tallies the bytes that reach the underlying writer
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// countingReader tallies the bytes taken from the underlying reader
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
