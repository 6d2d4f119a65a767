// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package bitvec

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Disk is a read-only bit vector that answers lookups against a
// serialized vector on disk without loading it into RAM
type Disk struct {
	header  Header
	config  Config
	f       *os.File
	backing diskBacking
}

// OpenReadOnlyFromPath opens a file written by Vector.WriteTo for
// random access lookups.  Files written with WriteCompressedTo are
// rejected with ErrCompressed.
func OpenReadOnlyFromPath(path string) (*Disk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	d, err := newDisk(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	d.f = f
	return d, nil
}

func newDisk(r io.ReaderAt) (*Disk, error) {
	var d Disk
	sr := io.NewSectionReader(r, 0, headerSize+8)
	if err := binary.Read(sr, binary.LittleEndian, &d.header); err != nil {
		return nil, err
	}
	if err := d.header.check(); err != nil {
		return nil, err
	}
	if d.header.Compressed {
		return nil, ErrCompressed
	}
	d.config = d.header.Config()
	var count uint64
	if err := binary.Read(sr, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	if err := d.config.checkWordCount(count); err != nil {
		return nil, err
	}
	d.backing = diskBacking{
		start:     headerSize + 8,
		wordBytes: int(d.config.WordBits / BitsPerByte),
		f:         r,
	}
	return &d, nil
}

func (d *Disk) Close() error {
	if d.f != nil {
		return d.f.Close()
	}
	return nil
}

// Header returns the header the file was written with
func (d *Disk) Header() Header {
	return d.header
}

func (d *Disk) Size() uint {
	return d.config.Size
}

// Lookup reads the word holding idx from disk and reports the bit
func (d *Disk) Lookup(idx uint) (bool, error) {
	if idx >= d.config.Size {
		return false, fmt.Errorf("lookup %d in vector of %d bits: %w", idx, d.config.Size, ErrOutOfRange)
	}
	w, err := d.backing.word(uint64(idx / d.config.WordBits))
	if err != nil {
		return false, err
	}
	return w&(uint64(1)<<(idx%d.config.WordBits)) != 0, nil
}
