package manager

import (
	"sync"

	"github.com/scylladb/go-set/strset"

	"github.com/cosmasken/kaspa402/internal/model"
)

const lockTTLMs = 60_000

// lockTable is the advisory, process-local reservation table over outpoints
// currently claimed by an in-flight payment or consolidation.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]model.UTXOLock
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]model.UTXOLock)}
}

func (t *lockTable) lock(key string, reason model.LockReason) {
	now := model.NowMs()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.locks[key] = model.UTXOLock{
		OutpointKey: key,
		LockedAtMs:  now,
		ExpiresAtMs: now + lockTTLMs,
		Reason:      reason,
	}
}

func (t *lockTable) unlock(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.locks, key)
}

func (t *lockTable) unlockMany(keys []string) {
	unique := strset.New(keys...)
	t.mu.Lock()
	defer t.mu.Unlock()
	unique.Each(func(k string) bool {
		delete(t.locks, k)
		return true
	})
}

// isLocked auto-expires a stale lock on read, per the UTXOLock lifecycle.
func (t *lockTable) isLocked(key string) bool {
	now := model.NowMs()
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.locks[key]
	if !ok {
		return false
	}
	if lock.Expired(now) {
		delete(t.locks, key)
		return false
	}
	return true
}

// cleanupExpiredLocks sweeps every expired lock and returns how many were
// removed.
func (t *lockTable) cleanupExpiredLocks() int {
	now := model.NowMs()
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for key, lock := range t.locks {
		if lock.Expired(now) {
			delete(t.locks, key)
			removed++
		}
	}
	return removed
}

// liveKeys returns the outpoint keys currently held, auto-expiring stale
// entries along the way. Used by the payment flow to filter candidates.
func (t *lockTable) liveKeys() map[string]struct{} {
	now := model.NowMs()
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]struct{}, len(t.locks))
	for key, lock := range t.locks {
		if lock.Expired(now) {
			delete(t.locks, key)
			continue
		}
		out[key] = struct{}{}
	}
	return out
}
