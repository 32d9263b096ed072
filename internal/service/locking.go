package service

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"
)

// lockRegistry hands out one binary semaphore per key, forming the locked
// scope for money-moving operations: the fund-share ledger acquires the
// investor's key and the cash line's key before reading balances and holds
// both until the transaction is written.
//
// Keys are acquired in sorted order so two operations contending for the
// same pair can never deadlock.
type lockRegistry struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{sems: make(map[string]*semaphore.Weighted)}
}

func (l *lockRegistry) sem(key string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.sems[key]
	if !ok {
		s = semaphore.NewWeighted(1)
		l.sems[key] = s
	}
	return s
}

// acquire locks the given keys and returns a release function. On error,
// any keys already held have been released.
func (l *lockRegistry) acquire(ctx context.Context, keys ...string) (func(), error) {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)

	held := make([]*semaphore.Weighted, 0, len(sorted))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Release(1)
		}
	}

	for _, key := range sorted {
		s := l.sem(key)
		if err := s.Acquire(ctx, 1); err != nil {
			release()
			return nil, err
		}
		held = append(held, s)
	}

	return release, nil
}
