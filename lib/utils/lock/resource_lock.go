package lock

import (
	"context"
	"sync/atomic"
)

// Resource limits how many CPU heavy jobs (xlsx and pdf exports) run at once.
var Resource = NewResourceLock(1)

func InitResourceLock(ctx context.Context, capacity int) {
	Resource = NewResourceLock(capacity)

	go func() {
		<-ctx.Done()
		Resource.Stop()
	}()
}

type ResourceLock struct {
	slots     chan string
	stopCh    chan struct{}
	stopped   atomic.Bool
	waitCount int32
}

func NewResourceLock(capacity int) *ResourceLock {
	if capacity < 1 {
		capacity = 1
	}
	return &ResourceLock{
		slots:  make(chan string, capacity),
		stopCh: make(chan struct{}),
	}
}

// Acquire blocks until a slot is free. It returns false when ctx ends or the lock is stopped.
func (c *ResourceLock) Acquire(ctx context.Context, jobName string) bool {
	atomic.AddInt32(&c.waitCount, 1)
	defer atomic.AddInt32(&c.waitCount, -1)

	if c.stopped.Load() {
		return false
	}
	select {
	case c.slots <- jobName:
		return true
	case <-ctx.Done():
		return false
	case <-c.stopCh:
		return false
	}
}

func (c *ResourceLock) Release() {
	select {
	case <-c.slots:
	default:
	}
}

func (c *ResourceLock) Stop() {
	if c.stopped.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
}

// WaitCount is the number of goroutines inside Acquire.
func (c *ResourceLock) WaitCount() int {
	return int(atomic.LoadInt32(&c.waitCount))
}
