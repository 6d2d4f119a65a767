package bitvec

import (
	"context"
	"sync"
	"time"

	"github.com/grafana/dskit/backoff"
)

// spinTries is the number of TryLock attempts LockContext makes before
// it starts backing off
const spinTries = 64

// DefaultLockBackoff returns the pacing LockContext uses once the
// initial spin has failed.  MaxRetries of zero retries until the
// context is done.
func DefaultLockBackoff() backoff.Config {
	return backoff.Config{
		MinBackoff: time.Microsecond,
		MaxBackoff: time.Millisecond,
		MaxRetries: 0,
	}
}

// LockContext acquires bit idx like Lock, but gives up when ctx is done
// and returns the context's error.  It spins briefly, then sleeps
// between attempts according to DefaultLockBackoff.
func (v *Vector[W]) LockContext(ctx context.Context, idx uint) error {
	return v.LockContextWithBackoff(ctx, idx, DefaultLockBackoff())
}

// LockContextWithBackoff is LockContext with explicit pacing.  With a
// non-zero cfg.MaxRetries it also gives up after that many sleeps.
func (v *Vector[W]) LockContextWithBackoff(ctx context.Context, idx uint, cfg backoff.Config) error {
	for i := 0; i < spinTries; i++ {
		if v.TryLock(idx) {
			return nil
		}
	}
	b := backoff.New(ctx, cfg)
	for b.Ongoing() {
		if v.TryLock(idx) {
			return nil
		}
		b.Wait()
	}
	return b.Err()
}

// Locker returns a sync.Locker for bit idx.  Like Unlock, the returned
// locker does not track which goroutine holds the bit.
func (v *Vector[W]) Locker(idx uint) sync.Locker {
	return bitLocker[W]{v: v, idx: idx}
}

type bitLocker[W Word] struct {
	v   *Vector[W]
	idx uint
}

func (l bitLocker[W]) Lock()   { l.v.Lock(l.idx) }
func (l bitLocker[W]) Unlock() { l.v.Unlock(l.idx) }
