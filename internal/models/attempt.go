package models

import "time"

// AttemptRecord tracks consecutive login failures for one login identifier.
// LockoutUntil is set if and only if a lockout window is currently active;
// loading an expired record resets it to the empty state.
type AttemptRecord struct {
	FailureCount  int
	LastFailureAt *time.Time
	LockoutUntil  *time.Time
}

// Empty reports whether the record carries no failure history.
func (r AttemptRecord) Empty() bool {
	return r.FailureCount == 0 && r.LastFailureAt == nil && r.LockoutUntil == nil
}

// Locked reports whether the record holds an active lockout at the given time.
func (r AttemptRecord) Locked(now time.Time) bool {
	return r.LockoutUntil != nil && now.Before(*r.LockoutUntil)
}
