package baseworker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Run("runs until cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		var calls int32
		done := make(chan struct{})
		go func() {
			NewInstance("test", 0, 5*time.Millisecond).Run(ctx, func(ctx context.Context) {
				atomic.AddInt32(&calls, 1)
			})
			close(done)
		}()
		require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 2 }, time.Second, time.Millisecond)
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("worker did not stop")
		}
	})
	t.Run("panic in job is recovered", func(t *testing.T) {
		require.NotPanics(t, func() {
			NewInstance("test", 0, time.Hour).Run(context.Background(), func(ctx context.Context) {
				panic("boom")
			})
		})
	})
}
