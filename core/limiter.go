package core

import (
	"fmt"
	"sync"
)

// ModelLimiter caps how many model calls a single run may make. A max of 0
// means no cap.
type ModelLimiter struct {
	mu    sync.Mutex
	max   int
	count int
}

// NewModelLimiter returns a limiter allowing up to max model calls.
func NewModelLimiter(max int) *ModelLimiter {
	return &ModelLimiter{max: max}
}

// Increment records one model call, failing once the cap is exceeded.
func (ml *ModelLimiter) Increment() error {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	ml.count++
	if ml.max > 0 && ml.count > ml.max {
		return fmt.Errorf("exceeded max model calls: %d", ml.max)
	}
	return nil
}

// Count reports the number of calls recorded so far.
func (ml *ModelLimiter) Count() int {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	return ml.count
}

// Remaining reports how many calls are left, or -1 when uncapped.
func (ml *ModelLimiter) Remaining() int {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	if ml.max == 0 {
		return -1
	}
	return ml.max - ml.count
}
