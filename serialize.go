// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package bitvec

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// bvVersion is a version number for the on disk representation
// format.  Any time incompatible changes are made, it is bumped
const bvVersion = uint64(0x0001)

// Header describes a serialized bit vector
type Header struct {
	// a version number which changes as the storage representation
	// changes
	Version uint64
	// the number of addressable bits.  Kept separately from the word
	// count so sizes that are not a multiple of the word width survive
	Size uint64
	// the width of a storage word in bits
	WordBits uint64
	// whether the word payload is zstd compressed
	Compressed bool
}

// headerSize is the encoded length of a Header
var headerSize = int64(binary.Size(Header{}))

// check rejects headers this build cannot read
func (h Header) check() error {
	if h.Version != bvVersion {
		return fmt.Errorf("version is %d, expected %d: %w", h.Version, bvVersion, ErrIncompatibleVersion)
	}
	if h.WordBits != 32 && h.WordBits != 64 {
		return fmt.Errorf("unsupported word width %d: %w", h.WordBits, ErrWordSizeMismatch)
	}
	if h.Size > uint64(^uint(0)) {
		return fmt.Errorf("%d bits exceed the address space: %w", h.Size, ErrCorrupt)
	}
	return nil
}

// Config reports the layout recorded in the header
func (h Header) Config() Config {
	return Config{Size: uint(h.Size), WordBits: uint(h.WordBits)}
}

func (v *Vector[W]) header(compressed bool) Header {
	return Header{
		Version:    bvVersion,
		Size:       uint64(v.size),
		WordBits:   uint64(wordBits[W]()),
		Compressed: compressed,
	}
}

// WriteTo allows the bit vector to be written to a stream.  Words are
// loaded atomically one at a time; concurrent writers may leave the
// stream with a mix of old and new words.
func (v *Vector[W]) WriteTo(stream io.Writer) (i int64, err error) {
	h := v.header(false)
	if err = binary.Write(stream, binary.LittleEndian, h); err != nil {
		return
	}
	i += headerSize

	x, err := writeWordSlice(stream, v.Words())
	i += x
	return
}

// WriteCompressedTo writes the bit vector like WriteTo, with the word
// payload compressed by zstd.  Sparse or dense vectors shrink well.
func (v *Vector[W]) WriteCompressedTo(stream io.Writer) (i int64, err error) {
	h := v.header(true)
	if err = binary.Write(stream, binary.LittleEndian, h); err != nil {
		return
	}
	i += headerSize

	cw := &countingWriter{w: stream}
	enc, err := zstd.NewWriter(cw)
	if err != nil {
		return
	}
	if _, err = writeWordSlice(enc, v.Words()); err != nil {
		enc.Close()
		i += cw.n
		return
	}
	err = enc.Close()
	i += cw.n
	return
}

// ReadFrom replaces the contents of the bit vector with one read from
// a stream.  Like Reset, it requires exclusive access.  A compressed
// payload may consume the remainder of the stream.
func (v *Vector[W]) ReadFrom(stream io.Reader) (i int64, err error) {
	var h Header
	if err = binary.Read(stream, binary.LittleEndian, &h); err != nil {
		return
	}
	i += headerSize
	if err = h.check(); err != nil {
		return
	}
	if h.WordBits != uint64(wordBits[W]()) {
		return i, fmt.Errorf("stream has %d bit words, vector has %d: %w",
			h.WordBits, wordBits[W](), ErrWordSizeMismatch)
	}
	cfg := h.Config()

	var words []W
	if h.Compressed {
		cr := &countingReader{r: stream}
		dec, derr := zstd.NewReader(cr)
		if derr != nil {
			return i, derr
		}
		defer dec.Close()
		words, _, err = readWordSlice[W](dec, cfg)
		if err == nil {
			// run the decoder to the end of the frame so the checksum is
			// verified and the byte count is final
			var extra [1]byte
			if k, rerr := dec.Read(extra[:]); k != 0 {
				err = fmt.Errorf("unexpected data after %d compressed words: %w", len(words), ErrCorrupt)
			} else if rerr != nil && rerr != io.EOF {
				err = rerr
			}
		}
		i += cr.n
	} else {
		var n int64
		words, n, err = readWordSlice[W](stream, cfg)
		i += n
	}
	if err != nil {
		return
	}

	v.size = cfg.Size
	v.words = words
	return
}

// ReadHeaderFromPath reads only the header of a serialized bit vector
func ReadHeaderFromPath(path string) (h Header, err error) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	err = binary.Read(f, binary.LittleEndian, &h)
	return
}
