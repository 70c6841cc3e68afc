package notify

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTime is returned for reminder times outside 00:00-23:59 or not
// in H:MM / HH:MM form.
var ErrInvalidTime = errors.New("invalid reminder time")

// Clock is a time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" (a single-digit hour is accepted).
func ParseClock(s string) (Clock, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	h, errH := parseDigits(hh, 1, 2)
	m, errM := parseDigits(mm, 2, 2)
	if errH != nil || errM != nil || h > 23 || m > 59 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return Clock{Hour: h, Minute: m}, nil
}

func parseDigits(s string, minLen, maxLen int) (int, error) {
	if len(s) < minLen || len(s) > maxLen {
		return 0, ErrInvalidTime
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidTime
		}
	}
	return strconv.Atoi(s)
}

// String formats the clock as zero-padded HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Next returns the first occurrence of c strictly after now, in now's location.
func (c Clock) Next(now time.Time) time.Time {
	y, mo, d := now.Date()
	at := time.Date(y, mo, d, c.Hour, c.Minute, 0, 0, now.Location())
	if !at.After(now) {
		at = time.Date(y, mo, d+1, c.Hour, c.Minute, 0, 0, now.Location())
	}
	return at
}
