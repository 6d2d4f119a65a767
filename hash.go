// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package bitvec

import (
	murmur "github.com/aviddiviner/go-murmur"
)

// HashFn is the signature for hash functions used to place keys
type HashFn func([]byte) uint64

// murmurSeed is fixed so a key always maps to the same slot across
// processes sharing a table layout
const murmurSeed = uint64(0x9747b28c)

func murmurhash64(v []byte) uint64 {
	return murmur.MurmurHash64A(v, murmurSeed)
}

// fnv64a constants
const (
	offset64 = uint64(14695981039346656037)
	prime64  = uint64(1099511628211)
)

// FNVHash is an inline 64 bit fnv-1a, an alternative to the default
// murmur hash for KeyLocks
func FNVHash(v []byte) uint64 {
	hv := offset64
	for _, c := range v {
		hv ^= uint64(c)
		hv *= prime64
	}
	return hv
}
