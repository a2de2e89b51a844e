package scheduler

import "time"

type (
	// Clock supplies the current time. Injectable so tests can pin
	// scheduling decisions to a fixed instant.
	Clock func() time.Time

	// Timer is the single resettable timer the run loop arms for the
	// earliest pending task
	Timer interface {
		Channel() <-chan time.Time
		Reset(delay time.Duration) bool
		Stop() bool
	}

	// TimerConstructor builds the run loop's timer
	TimerConstructor func(delay time.Duration) Timer

	wallTimer struct {
		inner *time.Timer
	}
)

// NewTimer returns a Timer backed by the runtime clock
func NewTimer(delay time.Duration) Timer {
	return &wallTimer{inner: time.NewTimer(delay)}
}

func (t *wallTimer) Channel() <-chan time.Time {
	return t.inner.C
}

func (t *wallTimer) Reset(delay time.Duration) bool {
	return t.inner.Reset(delay)
}

func (t *wallTimer) Stop() bool {
	return t.inner.Stop()
}
