package prologix

import (
	"bytes"
	"testing"
	"time"

	"github.com/arloliu/go-gpib/logger"
	"github.com/stretchr/testify/require"
)

const testPortName = "/dev/ttyUSB0"

const bootstrapWire = "++ifc\r\n++mode 1\r\n++eoi 1\r\n++eos 0\r\n"

// fakeClock is a Clock whose Sleep advances time instantly.
type fakeClock struct {
	now   time.Time
	slept time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	c.now = c.now.Add(d)
	c.slept += d
}

type burst struct {
	at   time.Time
	data []byte
}

// fakePort records writes and releases scripted bursts once the fake clock
// reaches their emission time.
type fakePort struct {
	clock   *fakeClock
	written bytes.Buffer
	bursts  []burst

	// writeErr, if set, decides the error for each write before it happens.
	writeErr func(data []byte) error
	readErr  error
	closeErr error
	// stall makes every write accept nothing without reporting an error.
	stall bool

	closed     bool
	closeCount int
}

func newFakePort(clock *fakeClock) *fakePort {
	return &fakePort{clock: clock}
}

// emitAfter schedules data to become readable d after the current fake time.
func (p *fakePort) emitAfter(d time.Duration, data string) {
	p.bursts = append(p.bursts, burst{at: p.clock.now.Add(d), data: []byte(data)})
}

func (p *fakePort) Read(b []byte) (int, error) {
	if p.readErr != nil {
		return 0, p.readErr
	}

	if len(p.bursts) == 0 || p.clock.now.Before(p.bursts[0].at) {
		return 0, nil
	}

	n := copy(b, p.bursts[0].data)
	if n < len(p.bursts[0].data) {
		p.bursts[0].data = p.bursts[0].data[n:]
	} else {
		p.bursts = p.bursts[1:]
	}

	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.stall {
		return 0, nil
	}
	if p.writeErr != nil {
		if err := p.writeErr(b); err != nil {
			return 0, err
		}
	}

	return p.written.Write(b)
}

func (p *fakePort) Close() error {
	p.closed = true
	p.closeCount++

	return p.closeErr
}

// fakeOpener hands out the same fakePort on every open.
type fakeOpener struct {
	port  *fakePort
	err   error
	opens int
}

func (o *fakeOpener) open(*Config) (Port, error) {
	if o.err != nil {
		return nil, o.err
	}
	o.opens++
	o.port.closed = false

	return o.port, nil
}

type testEnv struct {
	clock  *fakeClock
	port   *fakePort
	opener *fakeOpener
	log    *logger.MockLogger
	ctrl   *Controller
}

// newTestEnv creates a Controller wired to a fake port and clock.
// The bootstrap bytes are left in port.written.
func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	env := &testEnv{clock: newFakeClock(), log: logger.NewMockLogger().Permissive()}
	env.port = newFakePort(env.clock)
	env.opener = &fakeOpener{port: env.port}

	defaults := []Option{
		WithClock(env.clock),
		WithPortOpener(env.opener.open),
		WithLogger(env.log),
	}

	ctrl, err := NewController(testPortName, append(defaults, opts...)...)
	require.NoError(t, err)
	env.ctrl = ctrl

	return env
}

// loggedErrors returns the "error" values of every Error-level record.
func loggedErrors(m *logger.MockLogger) []error {
	var errs []error
	for _, call := range m.Calls {
		if call.Method != "Error" {
			continue
		}
		kvs, _ := call.Arguments.Get(1).([]any)
		for i := 0; i+1 < len(kvs); i += 2 {
			if kvs[i] == "error" {
				if err, ok := kvs[i+1].(error); ok {
					errs = append(errs, err)
				}
			}
		}
	}

	return errs
}
