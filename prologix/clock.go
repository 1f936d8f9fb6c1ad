package prologix

import (
	"time"

	"github.com/arloliu/go-gpib/internal/pool"
)

// Clock abstracts wall time for the idle-timeout reader and the settle delay.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d. Non-positive durations return immediately.
	Sleep(d time.Duration)
}

type systemClock struct{}

// SystemClock returns the Clock backed by the real wall clock.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(d time.Duration) { pool.Sleep(d) }
