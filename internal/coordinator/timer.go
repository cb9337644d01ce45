package coordinator

import "time"

// Default toggle schedule.
const (
	DefaultInitialDelay = 2 * time.Second
	DefaultPeriod       = 5 * time.Second
)

// ToggleTimer fires once after an initial delay and then every period.
type ToggleTimer struct {
	timer  *time.Timer
	period time.Duration
}

// NewToggleTimer starts a timer. Non-positive durations use the defaults.
func NewToggleTimer(initial, period time.Duration) *ToggleTimer {
	if initial <= 0 {
		initial = DefaultInitialDelay
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	return &ToggleTimer{timer: time.NewTimer(initial), period: period}
}

// C delivers the expirations.
func (t *ToggleTimer) C() <-chan time.Time {
	return t.timer.C
}

// Rearm schedules the next expiration one period from now. Call it after
// receiving from C.
func (t *ToggleTimer) Rearm() {
	t.timer.Reset(t.period)
}

// Period returns the repeat interval.
func (t *ToggleTimer) Period() time.Duration {
	return t.period
}

// Stop cancels any pending expiration.
func (t *ToggleTimer) Stop() {
	t.timer.Stop()
}
