package bitvec

import (
	"fmt"
	"unsafe"
)

// KeyLocks is a fixed table of bit locks addressed by key.  Keys are
// hashed onto slots, so two distinct keys may share a slot and wait on
// each other, but a key never maps to more than one slot.
type KeyLocks struct {
	bits   *BitVector
	hashfn HashFn
}

// NewKeyLocks allocates a table of slots bit locks using the default
// murmur hash
func NewKeyLocks(slots uint) *KeyLocks {
	return NewKeyLocksWithHash(slots, nil)
}

// NewKeyLocksWithHash allocates a table of slots bit locks placing keys
// with fn.  A nil fn selects the default murmur hash.
func NewKeyLocksWithHash(slots uint, fn HashFn) *KeyLocks {
	if slots == 0 {
		panic(fmt.Sprintf("key lock table needs at least one slot, got %d", slots))
	}
	if fn == nil {
		fn = murmurhash64
	}
	return &KeyLocks{bits: New(slots), hashfn: fn}
}

// Slots returns the number of bit locks in the table
func (k *KeyLocks) Slots() uint {
	return k.bits.Size()
}

// Slot returns the bit that guards key
func (k *KeyLocks) Slot(key []byte) uint {
	return uint(k.hashfn(key) % uint64(k.bits.Size()))
}

// Lock spins until the slot of key is acquired
func (k *KeyLocks) Lock(key []byte) {
	k.bits.Lock(k.Slot(key))
}

// TryLock acquires the slot of key if it is free
func (k *KeyLocks) TryLock(key []byte) bool {
	return k.bits.TryLock(k.Slot(key))
}

// Unlock releases the slot of key.  As with Vector.Unlock, the caller
// is trusted to hold it.
func (k *KeyLocks) Unlock(key []byte) {
	k.bits.Unlock(k.Slot(key))
}

// Locked reports whether the slot of key is currently held
func (k *KeyLocks) Locked(key []byte) bool {
	return k.bits.At(k.Slot(key))
}

// LockString is Lock for a string key
func (k *KeyLocks) LockString(s string) {
	k.Lock(stringBytes(s))
}

// TryLockString is TryLock for a string key
func (k *KeyLocks) TryLockString(s string) bool {
	return k.TryLock(stringBytes(s))
}

// UnlockString is Unlock for a string key
func (k *KeyLocks) UnlockString(s string) {
	k.Unlock(stringBytes(s))
}

// stringBytes views s as a byte slice without copying; the hash
// functions never retain or modify their input
func stringBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
