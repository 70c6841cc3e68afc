package notify

import (
	"context"
	"log/slog"
	"time"
)

// Reminder sends the daily notification at the scheduled time.
type Reminder struct {
	Notifier Notifier
	Schedule *Schedule

	// TimeSource, when set, is polled every RecheckEvery while waiting so a
	// changed reminder time takes effect straight away.
	TimeSource   func() string
	RecheckEvery time.Duration // default: one minute

	Sound  bool
	Logger *slog.Logger

	// Now and After default to time.Now and time.After.
	Now   func() time.Time
	After func(time.Duration) <-chan time.Time
}

// Run waits for each occurrence and sends the reminder until ctx is done.
// Delivery failures are logged and the loop carries on.
func (r *Reminder) Run(ctx context.Context) error {
	for {
		if err := r.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger().Warn("reminder delivery failed", "err", err)
		}
	}
}

// RunOnce waits for the next occurrence and sends a single reminder.
func (r *Reminder) RunOnce(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for {
		r.refresh()

		now := r.now()
		at := r.Schedule.Next(now)
		wait := at.Sub(now)
		r.logger().Debug("reminder scheduled", "at", at.Format(time.RFC3339))

		recheck := r.TimeSource != nil && wait > r.recheckEvery()
		if recheck {
			wait = r.recheckEvery()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.after(wait):
		}
		if !recheck {
			break
		}
	}

	return r.Notifier.Send(ctx, Notification{
		Title: DailyTitle,
		Body:  DailyBody,
		Sound: r.Sound,
	})
}

func (r *Reminder) refresh() {
	if r.TimeSource == nil {
		return
	}
	hhmm := r.TimeSource()
	if hhmm == r.Schedule.Clock().String() {
		return
	}
	if err := r.Schedule.Set(hhmm); err != nil {
		r.logger().Warn("keeping previous reminder time", "value", hhmm, "err", err)
		return
	}
	r.logger().Info("reminder time changed", "at", r.Schedule.Clock().String())
}

func (r *Reminder) recheckEvery() time.Duration {
	if r.RecheckEvery > 0 {
		return r.RecheckEvery
	}
	return time.Minute
}

func (r *Reminder) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Reminder) after(d time.Duration) <-chan time.Time {
	if r.After != nil {
		return r.After(d)
	}
	return time.After(d)
}

func (r *Reminder) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.DiscardHandler)
}
