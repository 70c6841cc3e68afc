package notify

import (
	"sync"
	"time"
)

// Schedule holds the current daily reminder time. It is safe for concurrent use.
type Schedule struct {
	mu    sync.RWMutex
	clock Clock
}

// NewSchedule returns a schedule firing at c.
func NewSchedule(c Clock) *Schedule {
	return &Schedule{clock: c}
}

// Set changes the reminder time. Invalid input returns ErrInvalidTime and
// leaves the current time in place.
func (s *Schedule) Set(hhmm string) error {
	c, err := ParseClock(hhmm)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.clock = c
	s.mu.Unlock()
	return nil
}

// Clock returns the current reminder time.
func (s *Schedule) Clock() Clock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clock
}

// Next returns today's occurrence if it is still ahead of now, else tomorrow's.
func (s *Schedule) Next(now time.Time) time.Time {
	return s.Clock().Next(now)
}
