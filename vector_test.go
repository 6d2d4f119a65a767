// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package bitvec

import (
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestWordBits(t *testing.T) {
	assert.Equal(t, uint(32), wordBits[uint32]())
	assert.Equal(t, uint(64), wordBits[uint64]())
}

func TestScenario(t *testing.T) {
	v := New(128)
	require.Equal(t, uint(128), v.Size())
	require.Equal(t, 2, v.WordCount())

	v.Set(5)
	v.Set(70)
	assert.True(t, v.At(5))
	assert.True(t, v.At(70))
	assert.False(t, v.At(4))
	assert.False(t, v.At(69))

	v.Reset(10)
	assert.Equal(t, uint(10), v.Size())
	assert.Equal(t, 1, v.WordCount())
	for i := uint(0); i < 10; i++ {
		assert.False(t, v.At(i), "bit %d set after reset", i)
	}
}

func TestSetUnset(t *testing.T) {
	t.Run("uint32", testSetUnset[uint32])
	t.Run("uint64", testSetUnset[uint64])
}

// random set/unset against a plain []bool model
func testSetUnset[W Word](t *testing.T) {
	r := rand.New(rand.NewSource(77)) //intentionally fixed seed
	const n = 1000
	v := NewOf[W](n)
	model := make([]bool, n)
	for j := 0; j < 20000; j++ {
		idx := uint(r.Intn(n))
		if r.Intn(2) == 0 {
			v.Set(idx)
			model[idx] = true
			if !assert.True(t, v.At(idx), "bit %d clear after set", idx) {
				return
			}
		} else {
			v.Unset(idx)
			model[idx] = false
			if !assert.False(t, v.At(idx), "bit %d set after unset", idx) {
				return
			}
		}
	}
	for i := uint(0); i < n; i++ {
		assert.Equal(t, model[i], v.At(i), "bit %d", i)
	}
}

func TestIdempotence(t *testing.T) {
	v := New(64)
	v.Set(3)
	v.Set(3)
	assert.True(t, v.At(3))
	assert.Equal(t, []uint64{1 << 3}, v.Words())
	v.Unset(3)
	v.Unset(3)
	assert.False(t, v.At(3))
	v.Unset(9)
	assert.Equal(t, []uint64{0}, v.Words())
}

func TestSetIsolation(t *testing.T) {
	for _, size := range []uint{1, 31, 32, 33, 64, 65, 200} {
		v := NewOf[uint32](size)
		for i := uint(0); i < size; i++ {
			v.Set(i)
			for j := uint(0); j < size; j++ {
				if i != j && !assert.False(t, v.At(j), "setting %d disturbed %d (size %d)", i, j, size) {
					return
				}
			}
			v.Unset(i)
		}
	}
}

func TestFromWords(t *testing.T) {
	r := rand.New(rand.NewSource(77)) //intentionally fixed seed
	words := make([]uint64, 5)
	for i := range words {
		words[i] = r.Uint64()
	}
	v := FromWords(words)
	require.Equal(t, uint(5*64), v.Size())
	for i := uint(0); i < v.Size(); i++ {
		assert.Equal(t, words[i/64]&(1<<(i%64)) != 0, v.At(i), "bit %d", i)
	}

	// the vector owns a copy
	words[0] = 0
	assert.NotEqual(t, uint64(0), v.Words()[0])

	small := FromWords([]uint32{0x80000001})
	assert.Equal(t, uint(32), small.Size())
	assert.True(t, small.At(0))
	assert.True(t, small.At(31))
	assert.False(t, small.At(1))
}

func TestEmpty(t *testing.T) {
	v := New(0)
	assert.Equal(t, uint(0), v.Size())
	assert.Equal(t, 0, v.WordCount())
	assert.Equal(t, uint(0), v.Count())
	_, found := v.NextSet(0)
	assert.False(t, found)
}

func TestSwap(t *testing.T) {
	a := New(10)
	b := New(100)
	a.Set(1)
	b.Set(99)
	a.Swap(b)

	assert.Equal(t, uint(100), a.Size())
	assert.Equal(t, uint(10), b.Size())
	assert.True(t, a.At(99))
	assert.False(t, a.At(1))
	assert.True(t, b.At(1))
	assert.Equal(t, 2, a.WordCount())
	assert.Equal(t, 1, b.WordCount())
}

func TestMove(t *testing.T) {
	src := New(70)
	src.Set(69)
	dst := src.Move()

	assert.Equal(t, uint(70), dst.Size())
	assert.True(t, dst.At(69))
	assert.Equal(t, uint(0), src.Size())
	assert.Equal(t, 0, src.WordCount())

	// a moved from vector is still usable after a reset
	src.Reset(5)
	src.Set(4)
	assert.True(t, src.At(4))
	assert.False(t, dst.At(4))
}

func TestTryLock(t *testing.T) {
	v := New(64)
	assert.True(t, v.TryLock(7))
	assert.True(t, v.At(7))
	assert.False(t, v.TryLock(7))

	// neighbouring bits in the same word are independent locks
	assert.True(t, v.TryLock(8))
	v.Unlock(7)
	assert.False(t, v.At(7))
	assert.True(t, v.At(8))
	assert.True(t, v.TryLock(7))
}

func TestTryLockRace(t *testing.T) {
	t.Run("uint32", testTryLockRace[uint32])
	t.Run("uint64", testTryLockRace[uint64])
}

func testTryLockRace[W Word](t *testing.T) {
	const bits = 256
	goroutines := runtime.GOMAXPROCS(0) * 4
	for round := 0; round < 20; round++ {
		v := NewOf[W](bits)
		var winners [bits]atomic.Int32
		var g errgroup.Group
		for w := 0; w < goroutines; w++ {
			g.Go(func() error {
				for i := uint(0); i < bits; i++ {
					if v.TryLock(i) {
						winners[i].Add(1)
					}
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())
		for i := range winners {
			if !assert.Equal(t, int32(1), winners[i].Load(), "bit %d in round %d", i, round) {
				return
			}
			assert.True(t, v.At(uint(i)))
		}
	}
}

func TestLockHandoff(t *testing.T) {
	v := New(16)
	v.Lock(3)
	v.Unlock(3)
	assert.False(t, v.At(3))

	var g errgroup.Group
	var got bool
	g.Go(func() error {
		got = v.TryLock(3)
		return nil
	})
	require.NoError(t, g.Wait())
	assert.True(t, got)
}

// Unlock carries no ownership: a bit locked by one goroutine may be
// released by another
func TestUnlockFromAnotherGoroutine(t *testing.T) {
	v := New(16)
	v.Lock(2)
	done := make(chan struct{})
	go func() {
		v.Lock(2)
		close(done)
	}()
	var g errgroup.Group
	g.Go(func() error {
		v.Unlock(2)
		return nil
	})
	require.NoError(t, g.Wait())
	<-done
	assert.True(t, v.At(2))
}

// plain counters guarded by bit locks must not lose increments, even
// while the other bits of the same words are locked and unlocked
func TestLockMutualExclusion(t *testing.T) {
	t.Run("uint32", testLockMutualExclusion[uint32])
	t.Run("uint64", testLockMutualExclusion[uint64])
}

func testLockMutualExclusion[W Word](t *testing.T) {
	const (
		slots      = 8
		increments = 2000
	)
	goroutines := runtime.GOMAXPROCS(0) * 2
	v := NewOf[W](slots)
	counters := make([]int, slots)
	var g errgroup.Group
	for w := 0; w < goroutines; w++ {
		g.Go(func() error {
			for j := 0; j < increments; j++ {
				slot := uint((w + j) % slots)
				v.Lock(slot)
				counters[slot]++
				v.Unlock(slot)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	total := 0
	for _, c := range counters {
		total += c
	}
	assert.Equal(t, goroutines*increments, total)
	assert.Equal(t, uint(0), v.Count())
}

// Set and Unset on different bits of one word must never lose each
// other's updates
func TestSameWordWriters(t *testing.T) {
	v := New(64)
	var wg sync.WaitGroup
	for b := uint(0); b < 64; b++ {
		wg.Add(1)
		go func(b uint) {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				v.Set(b)
				v.Unset(b)
			}
			if b%2 == 0 {
				v.Set(b)
			}
		}(b)
	}
	wg.Wait()
	for b := uint(0); b < 64; b++ {
		assert.Equal(t, b%2 == 0, v.At(b), "bit %d", b)
	}
}

func BenchmarkSet(b *testing.B) {
	v := New(1 << 16)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		v.Set(uint(n) & (1<<16 - 1))
	}
}

func BenchmarkAt(b *testing.B) {
	v := New(1 << 16)
	for i := uint(0); i < 1<<16; i += 3 {
		v.Set(i)
	}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		v.At(uint(n) & (1<<16 - 1))
	}
}

func BenchmarkTryLockUnlockParallel(b *testing.B) {
	v := New(1 << 10)
	b.RunParallel(func(pb *testing.PB) {
		i := uint(0)
		for pb.Next() {
			idx := i & (1<<10 - 1)
			if v.TryLock(idx) {
				v.Unlock(idx)
			}
			i++
		}
	})
}

func BenchmarkBitSetTest(b *testing.B) {
	bs := bitset.New(1 << 16)
	for i := uint(0); i < 1<<16; i += 3 {
		bs.Set(i)
	}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		bs.Test(uint(n) & (1<<16 - 1))
	}
}

func BenchmarkBloomFilter(b *testing.B) {
	bf := bloom.NewWithEstimates(1<<16, 0.0001)
	for i := 0; i < 1<<16; i += 3 {
		bf.AddString(string(rune(i)))
	}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		bf.TestString(string(rune(n & (1<<16 - 1))))
	}
}
