package availability

import (
	"context"
	"time"
)

// Outcome is the availability collaborator's answer. The legacy frontend
// faked this with randomness; here it is a real query against recorded
// bookings.
type Outcome string

const (
	Available   Outcome = "available"
	Unavailable Outcome = "unavailable"
)

type Checker interface {
	Check(ctx context.Context, productRef string, date time.Time) (Outcome, error)
}

// BookingCounter is the slice of the booking store the checker needs.
type BookingCounter interface {
	CountActiveOn(ctx context.Context, productRef string, date time.Time) (int, error)
}

// RepoChecker treats a product as available on a date while fewer than
// maxPerDay active bookings hold it.
type RepoChecker struct {
	counter   BookingCounter
	maxPerDay int
}

func NewRepoChecker(counter BookingCounter) *RepoChecker {
	return &RepoChecker{counter: counter, maxPerDay: 1}
}

func (c *RepoChecker) Check(ctx context.Context, productRef string, date time.Time) (Outcome, error) {
	count, err := c.counter.CountActiveOn(ctx, productRef, date)
	if err != nil {
		return Unavailable, err
	}
	if count >= c.maxPerDay {
		return Unavailable, nil
	}
	return Available, nil
}

var _ Checker = (*RepoChecker)(nil)
