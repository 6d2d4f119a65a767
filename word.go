// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package bitvec

import (
	"math/bits"
	"sync/atomic"
)

// Word is the unit of atomic storage.  Its width decides how many bits
// share a single compare-and-swap.
type Word interface {
	uint32 | uint64
}

// wordBits reports the width in bits of W
func wordBits[W Word]() uint {
	return uint(bits.OnesCount64(uint64(^W(0))))
}

// the helpers below are the only places storage words are touched on
// the hot path.  sync/atomic is sequentially consistent, which covers
// both the release side (or, and, cas) and the acquire side (load).

func loadWord[W Word](p *W) W {
	switch p := any(p).(type) {
	case *uint32:
		return W(atomic.LoadUint32(p))
	case *uint64:
		return W(atomic.LoadUint64(p))
	}
	panic("unreachable")
}

func storeWord[W Word](p *W, v W) {
	switch p := any(p).(type) {
	case *uint32:
		atomic.StoreUint32(p, uint32(v))
	case *uint64:
		atomic.StoreUint64(p, uint64(v))
	}
}

func orWord[W Word](p *W, mask W) {
	switch p := any(p).(type) {
	case *uint32:
		atomic.OrUint32(p, uint32(mask))
	case *uint64:
		atomic.OrUint64(p, uint64(mask))
	}
}

func andWord[W Word](p *W, mask W) {
	switch p := any(p).(type) {
	case *uint32:
		atomic.AndUint32(p, uint32(mask))
	case *uint64:
		atomic.AndUint64(p, uint64(mask))
	}
}

func casWord[W Word](p *W, old, new W) bool {
	switch p := any(p).(type) {
	case *uint32:
		return atomic.CompareAndSwapUint32(p, uint32(old), uint32(new))
	case *uint64:
		return atomic.CompareAndSwapUint64(p, uint64(old), uint64(new))
	}
	return false
}
