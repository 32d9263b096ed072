package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestLockRegistry tests the keyed locks behind the fund-share ledger.
//
// WHY: The locked scope is what keeps concurrent trades from reading the
// same balance twice. The registry must serialize holders of a key, never
// deadlock on overlapping key pairs, and leave nothing held behind when an
// acquisition is abandoned.
func TestLockRegistry(t *testing.T) {
	t.Run("serializes holders of the same key", func(t *testing.T) {
		locks := newLockRegistry()

		release, err := locks.acquire(context.Background(), "investor/a")
		if err != nil {
			t.Fatalf("acquire() returned unexpected error: %v", err)
		}

		var entered atomic.Bool
		done := make(chan struct{})
		go func() {
			defer close(done)
			r, err := locks.acquire(context.Background(), "investor/a")
			if err != nil {
				t.Errorf("second acquire() returned unexpected error: %v", err)
				return
			}
			entered.Store(true)
			r()
		}()

		time.Sleep(50 * time.Millisecond)
		if entered.Load() {
			t.Fatal("Expected second acquirer to block while the key is held")
		}

		release()
		<-done
		if !entered.Load() {
			t.Error("Expected second acquirer to proceed after release")
		}
	})

	t.Run("opposite key orders do not deadlock", func(t *testing.T) {
		locks := newLockRegistry()

		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			keys := []string{"investor/a", "cash/YTM"}
			if i == 1 {
				keys = []string{"cash/YTM", "investor/a"}
			}

			wg.Add(1)
			go func(keys []string) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					release, err := locks.acquire(context.Background(), keys...)
					if err != nil {
						t.Errorf("acquire() returned unexpected error: %v", err)
						return
					}
					release()
				}
			}(keys)
		}

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("Deadlock: contending acquirers never finished")
		}
	})

	t.Run("cancelled acquisition releases partially held keys", func(t *testing.T) {
		locks := newLockRegistry()

		// Hold the second key in sort order so the acquirer takes the first
		// and then blocks.
		releaseB, err := locks.acquire(context.Background(), "investor/b")
		if err != nil {
			t.Fatalf("acquire() returned unexpected error: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			_, err := locks.acquire(ctx, "cash/YTM", "investor/b")
			errCh <- err
		}()

		time.Sleep(50 * time.Millisecond)
		cancel()

		if err := <-errCh; err == nil {
			t.Fatal("Expected acquire() to fail after cancellation")
		}

		// The first key must have been released, or this would block forever.
		acquired := make(chan struct{})
		go func() {
			release, err := locks.acquire(context.Background(), "cash/YTM")
			if err != nil {
				t.Errorf("acquire() returned unexpected error: %v", err)
				return
			}
			release()
			close(acquired)
		}()

		select {
		case <-acquired:
		case <-time.After(time.Second):
			t.Fatal("Expected the partially held key to be free after cancellation")
		}

		releaseB()
	})
}
