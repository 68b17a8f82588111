package clock

import (
	"sync"
	"time"
)

// Clock is the time source for services and stores.
type Clock interface {
	Now() time.Time
}

// Func adapts a plain function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// NewSystem returns a UTC wall clock.
func NewSystem() Clock {
	return Func(func() time.Time { return time.Now().UTC() })
}

// NewFixed always reports t.
func NewFixed(t time.Time) Clock {
	t = t.UTC()
	return Func(func() time.Time { return t })
}

// Manual is a test clock that only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start.UTC()}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
