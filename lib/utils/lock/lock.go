package lock

import (
	"context"
	"sync"
	"time"
)

var (
	lockMap sync.Map
)

const retryInterval = 20 * time.Millisecond

// WithDelay runs safeCode while holding the in-process lock for key.
// It waits up to wait for the lock and returns success=false when the lock
// was not obtained in time. A cancelled ctx returns its error.
func WithDelay(ctx context.Context, key string, wait time.Duration, safeCode func() error) (success bool, err error) {
	isTimeout := time.After(wait)
	for {
		if _, loaded := lockMap.LoadOrStore(key, struct{}{}); !loaded {
			break
		}
		select {
		case <-isTimeout:
			return false, nil
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	defer lockMap.Delete(key)
	return true, safeCode()
}
