package quiz

import "time"

// Timer is a polled per-question countdown with one-second resolution.
type Timer struct {
	StartedAt       time.Time  `json:"started_at"`
	DurationSeconds int        `json:"duration_seconds"`
	Expired         bool       `json:"expired"`
	ExpiredAt       *time.Time `json:"expired_at,omitempty"`
}

// NewTimer starts a countdown at now.
func NewTimer(now time.Time, durationSeconds int) *Timer {
	return &Timer{StartedAt: now, DurationSeconds: durationSeconds}
}

// Remaining returns max(0, duration - elapsed whole seconds). The first read
// that reaches zero marks the timer expired; later reads keep that mark.
func (t *Timer) Remaining(now time.Time) int {
	elapsed := int(now.Sub(t.StartedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := t.DurationSeconds - elapsed
	if remaining <= 0 {
		remaining = 0
		if !t.Expired {
			t.Expired = true
			at := now
			t.ExpiredAt = &at
		}
	}
	return remaining
}
