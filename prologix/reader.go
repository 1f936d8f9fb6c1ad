package prologix

import (
	"io"
	"time"
)

const defaultReadBufferSize = 256

// IdleReader assembles a response whose end is marked only by silence.
//
// It polls Source for currently available bytes. Every non-empty read is
// appended to the result and restarts the idle measurement; once Idle has
// elapsed since the last byte arrived (or since the start, if none did), the
// accumulated bytes are returned. A fast reply therefore still costs one full
// Idle period, and a reply with an inter-byte gap longer than Idle is cut at
// that gap.
type IdleReader struct {
	// Source is polled for available bytes. A Read returning (0, nil) or a
	// timeout error means "nothing yet".
	Source io.Reader
	// Clock measures idle time. Nil selects SystemClock.
	Clock Clock
	// Idle is the silence that ends the response.
	Idle time.Duration
	// Poll is the longest sleep after a poll that found no data. The sleep
	// never extends past the end of the idle window. Zero busy-polls.
	Poll time.Duration
	// BufferSize is the size of a single read. Zero selects a default.
	BufferSize int
}

// ReadUntilIdle polls until Idle has elapsed since the last received byte and
// returns everything received. An empty result with a nil error means nothing
// arrived. Any read error other than a timeout ends the read and is returned
// together with the bytes received so far.
func (r *IdleReader) ReadUntilIdle() ([]byte, error) {
	clock := r.Clock
	if clock == nil {
		clock = SystemClock()
	}

	size := r.BufferSize
	if size <= 0 {
		size = defaultReadBufferSize
	}
	buf := make([]byte, size)

	var out []byte
	lastRead := clock.Now()

	for clock.Now().Sub(lastRead) < r.Idle {
		n, err := r.Source.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
			lastRead = clock.Now()
		}

		if err != nil && !isTimeout(err) {
			return out, err
		}

		if n == 0 {
			clock.Sleep(min(r.Poll, r.Idle-clock.Now().Sub(lastRead)))
		}
	}

	return out, nil
}
