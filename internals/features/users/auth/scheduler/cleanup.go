package scheduler

import (
	"context"
	"log"
	"time"

	"bookshelf_backend/internals/features/users/auth/repository"
)

// StartRevocationCleanup purges expired revocations every interval until ctx
// is cancelled. The returned channel is closed when the loop has stopped.
func StartRevocationCleanup(ctx context.Context, store repository.RevocationStore, every time.Duration) <-chan struct{} {
	if every <= 0 {
		every = time.Hour
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				RunCleanup(ctx, store, now)
			}
		}
	}()
	return done
}

// RunCleanup performs a single purge pass.
func RunCleanup(ctx context.Context, store repository.RevocationStore, now time.Time) int64 {
	n, err := store.PurgeExpired(ctx, now)
	if err != nil {
		log.Printf("[CLEANUP ERROR] purge revoked tokens: %v", err)
		return 0
	}
	if n > 0 {
		log.Printf("[CLEANUP] %d expired revocations removed", n)
	}
	return n
}
