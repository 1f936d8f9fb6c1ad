// Package pool recycles timers used for the short, frequent sleeps of the
// serial poll loop and the close settle delay.
package pool

import (
	"sync"
	"time"
)

var timerPool sync.Pool

// GetTimer returns a timer for the given duration d from the pool.
//
// Return back the timer to the pool with PutTimer.
func GetTimer(d time.Duration) *time.Timer {
	if v := timerPool.Get(); v != nil {
		t, _ := v.(*time.Timer)
		if t.Reset(d) {
			select {
			case <-t.C:
			default:
			}
		}
		return t
	}
	return time.NewTimer(d)
}

// PutTimer returns timer to the pool.
//
// t cannot be accessed after returning to the pool.
func PutTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	timerPool.Put(t)
}

// Sleep blocks the calling goroutine for d using a pooled timer.
// Non-positive durations return immediately.
func Sleep(d time.Duration) {
	if d <= 0 {
		return
	}

	t := GetTimer(d)
	<-t.C
	timerPool.Put(t)
}
