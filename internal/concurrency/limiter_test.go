package concurrency

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_BoundsConcurrentAccess(t *testing.T) {
	limiter := NewLimiter(2)
	var current, maxSeen int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			limiter.Acquire()
			defer limiter.Release()

			n := atomic.AddInt32(&current, 1)
			for {
				prev := atomic.LoadInt32(&maxSeen)
				if n <= prev || atomic.CompareAndSwapInt32(&maxSeen, prev, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&current, -1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, int(maxSeen), 2)
}

func TestLimiter_ReleaseFreesSlotForNextAcquire(t *testing.T) {
	limiter := NewLimiter(1)
	limiter.Acquire()

	acquired := make(chan struct{})
	go func() {
		limiter.Acquire()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second Acquire returned before Release")
	case <-time.After(20 * time.Millisecond):
	}

	limiter.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Acquire never returned after Release")
	}
}

func TestNewLimiter_PanicsOnNonPositiveMax(t *testing.T) {
	assert.Panics(t, func() { NewLimiter(0) })
	assert.Panics(t, func() { NewLimiter(-1) })
}
