package prologix

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/arloliu/go-gpib/gpib"
	"github.com/arloliu/go-gpib/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===========================================================================
// Session
// ===========================================================================

func TestNewController_Bootstrap(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, bootstrapWire, env.port.written.String())
	assert.Equal(t, 1, env.opener.opens)
	assert.Equal(t, OpenState, env.ctrl.State())
	assert.EqualValues(t, 4, env.ctrl.Metrics().ControllerCommandCount.Load())
	assert.Equal(t, testPortName, env.ctrl.PortName())

	debug := env.log.Messages("Debug")
	assert.Contains(t, debug, "controller command")
}

func TestNewController_BootstrapNotRepeatedOnReopen(t *testing.T) {
	env := newTestEnv(t, WithSettleDelay(100*time.Millisecond))
	env.ctrl.Close()
	env.port.written.Reset()

	require.True(t, env.ctrl.Write(5, "SO1"))

	assert.Equal(t, "++addr 5\r\nSO1\r\n", env.port.written.String())
	assert.Equal(t, 2, env.opener.opens)
}

func TestNewController_InvalidConfig(t *testing.T) {
	_, err := NewController("")
	require.ErrorIs(t, err, ErrEmptyPortName)

	_, err = NewController(testPortName, WithReadTimeout(time.Hour))
	require.Error(t, err)
}

func TestNewController_OpenFailure(t *testing.T) {
	clock := newFakeClock()
	opener := &fakeOpener{port: newFakePort(clock), err: errors.New("no such device")}
	log := logger.NewMockLogger().Permissive()

	ctrl, err := NewController(testPortName, WithClock(clock), WithPortOpener(opener.open), WithLogger(log))
	require.NoError(t, err)
	assert.Equal(t, ClosedState, ctrl.State())

	// each bootstrap meta-command tried to open and logged its own failure
	errs := loggedErrors(log)
	require.Len(t, errs, 4)
	for _, err := range errs {
		assert.ErrorIs(t, err, ErrTransport)
	}

	assert.False(t, ctrl.Write(5, "SO1"))
	reply, ok := ctrl.Query(5, "T?")
	assert.False(t, ok)
	assert.Empty(t, reply)
	assert.Error(t, ctrl.Open())
	assert.Len(t, loggedErrors(log), 6)
}

func TestController_Close(t *testing.T) {
	env := newTestEnv(t, WithSettleDelay(300*time.Millisecond))
	begin := env.clock.Now()

	env.ctrl.Close()

	assert.True(t, env.port.closed)
	assert.Equal(t, 300*time.Millisecond, env.clock.Now().Sub(begin))
	assert.Equal(t, ClosedState, env.ctrl.State())
	assert.True(t, env.ctrl.Ready())
	assert.False(t, env.ctrl.IsOpen())

	// closing a closed channel still honors the settle delay
	env.ctrl.Close()
	assert.Equal(t, 600*time.Millisecond, env.clock.Now().Sub(begin))
	assert.Equal(t, 1, env.port.closeCount)
}

func TestController_CloseAsync(t *testing.T) {
	env := newTestEnv(t, WithSettleDelay(300*time.Millisecond))
	begin := env.clock.Now()

	resumeAt := env.ctrl.CloseAsync()
	assert.Equal(t, begin.Add(300*time.Millisecond), resumeAt)
	assert.Equal(t, resumeAt, env.ctrl.ReadyAt())
	assert.Equal(t, begin, env.clock.Now(), "CloseAsync must not sleep")
	assert.Equal(t, ClosingState, env.ctrl.State())
	assert.False(t, env.ctrl.Ready())

	env.clock.Sleep(299 * time.Millisecond)
	assert.False(t, env.ctrl.Ready())

	env.clock.Sleep(time.Millisecond)
	assert.True(t, env.ctrl.Ready())
	assert.Equal(t, ClosedState, env.ctrl.State())
}

func TestController_ReopenWaitsForSettle(t *testing.T) {
	env := newTestEnv(t, WithSettleDelay(300*time.Millisecond))

	resumeAt := env.ctrl.CloseAsync()
	env.clock.Sleep(100 * time.Millisecond)

	require.NoError(t, env.ctrl.Open())
	assert.False(t, env.clock.Now().Before(resumeAt))
	assert.Equal(t, OpenState, env.ctrl.State())
	assert.Equal(t, 2, env.opener.opens)

	// already open: no reopen
	require.NoError(t, env.ctrl.Open())
	assert.Equal(t, 2, env.opener.opens)
}

func TestController_CloseFaultIsLogged(t *testing.T) {
	env := newTestEnv(t, WithSettleDelay(0))
	env.port.closeErr = errors.New("close failed")

	assert.NotPanics(t, env.ctrl.Close)
	errs := loggedErrors(env.log)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrTransport)
}

func TestController_Dispose(t *testing.T) {
	env := newTestEnv(t, WithSettleDelay(200*time.Millisecond))
	begin := env.clock.Now()

	env.ctrl.Dispose()
	assert.True(t, env.ctrl.Disposed())
	assert.True(t, env.port.closed)
	assert.Equal(t, 200*time.Millisecond, env.clock.Now().Sub(begin))

	env.ctrl.Dispose()
	assert.Equal(t, 200*time.Millisecond, env.clock.Now().Sub(begin), "second Dispose is a no-op")
	assert.Equal(t, 1, env.port.closeCount)

	assert.False(t, env.ctrl.Ready())
	assert.ErrorIs(t, env.ctrl.Open(), ErrDisposed)
	assert.False(t, env.ctrl.Write(5, "SO1"))

	errs := loggedErrors(env.log)
	require.NotEmpty(t, errs)
	assert.ErrorIs(t, errs[len(errs)-1], ErrDisposed)
}

func TestController_IsBus(t *testing.T) {
	env := newTestEnv(t)

	var bus gpib.Bus = env.ctrl
	bus = gpib.Serialized(bus)
	assert.True(t, bus.Write(1, "X"))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", ClosedState.String())
	assert.Equal(t, "opening", OpeningState.String())
	assert.Equal(t, "open", OpenState.String())
	assert.Equal(t, "closing", ClosingState.String())
	assert.Equal(t, "unknown", State(42).String())
}

// ===========================================================================
// Transactions
// ===========================================================================

func TestWrite_PlainCommand(t *testing.T) {
	env := newTestEnv(t)
	env.port.written.Reset()

	require.True(t, env.ctrl.Write(5, "SO1"))
	assert.Equal(t, "++addr 5\r\nSO1\r\n", env.port.written.String())
	assert.Contains(t, env.log.Messages("Info"), "gpib command")
}

func TestWrite_EscapesPayload(t *testing.T) {
	env := newTestEnv(t)
	env.port.written.Reset()

	require.True(t, env.ctrl.Write(5, "A+B"))
	assert.Equal(t, "++addr 5\r\nA\x1b+B\r\n", env.port.written.String())
}

func TestTransactions_AddressBeforeEveryPayload(t *testing.T) {
	env := newTestEnv(t, WithReadTimeout(50*time.Millisecond))
	env.port.written.Reset()

	require.True(t, env.ctrl.Write(5, "A"))
	require.True(t, env.ctrl.Write(5, "B"))
	_, ok := env.ctrl.Query(3, "C?")
	require.True(t, ok)
	require.True(t, env.ctrl.Write(5, "D"))

	want := strings.Join([]string{
		"++addr 5\r\n", "A\r\n",
		"++addr 5\r\n", "B\r\n",
		"++addr 3\r\n", "C?\r\n",
		"++addr 5\r\n", "D\r\n",
	}, "")
	assert.Equal(t, want, env.port.written.String())
}

func TestWrite_InvalidAddress(t *testing.T) {
	env := newTestEnv(t)
	env.port.written.Reset()

	assert.False(t, env.ctrl.Write(31, "SO1"))
	assert.False(t, env.ctrl.Write(-1, "SO1"))
	assert.Zero(t, env.port.written.Len())

	errs := loggedErrors(env.log)
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], gpib.ErrInvalidAddress)
}

func TestWrite_PayloadFault(t *testing.T) {
	env := newTestEnv(t)
	env.port.written.Reset()
	env.port.writeErr = func(data []byte) error {
		if strings.HasPrefix(string(data), "++") {
			return nil
		}
		return errors.New("write timeout")
	}

	assert.NotPanics(t, func() {
		assert.False(t, env.ctrl.Write(5, "SO1"))
	})
	assert.Equal(t, "++addr 5\r\n", env.port.written.String())

	errs := loggedErrors(env.log)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrTransport)
}

func TestWrite_StalledPort(t *testing.T) {
	env := newTestEnv(t)
	env.port.stall = true

	done := make(chan bool, 1)
	go func() { done <- env.ctrl.Write(5, "SO1") }()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("Write did not return on a port that accepts no bytes")
	}

	errs := loggedErrors(env.log)
	require.NotEmpty(t, errs)
	assert.ErrorIs(t, errs[0], ErrTransport)
	assert.ErrorIs(t, errs[0], io.ErrShortWrite)
}

func TestWrite_AddressSwitchFaultWithholdsPayload(t *testing.T) {
	env := newTestEnv(t)
	env.port.written.Reset()
	env.port.writeErr = func(data []byte) error {
		if strings.HasPrefix(string(data), "++addr") {
			return errors.New("write timeout")
		}
		return nil
	}

	assert.False(t, env.ctrl.Write(5, "SO1"))
	assert.Zero(t, env.port.written.Len())

	errs := loggedErrors(env.log)
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], ErrTransport)
	assert.ErrorIs(t, errs[1], ErrAddressSwitch)
}

func TestQuery_TwoBursts(t *testing.T) {
	env := newTestEnv(t)
	env.port.written.Reset()

	env.port.emitAfter(0, "3.")
	env.port.emitAfter(50*time.Millisecond, "900")
	secondBurst := env.clock.Now().Add(50 * time.Millisecond)

	reply, ok := env.ctrl.Query(3, "T?")
	require.True(t, ok)
	assert.Equal(t, "3.900", reply)
	assert.Equal(t, "++addr 3\r\nT?\r\n", env.port.written.String())

	waited := env.clock.Now().Sub(secondBurst)
	assert.GreaterOrEqual(t, waited, 500*time.Millisecond)
	assert.LessOrEqual(t, waited, 550*time.Millisecond)

	m := env.ctrl.Metrics()
	assert.EqualValues(t, 1, m.QueryCount.Load())
	assert.EqualValues(t, 5, m.BytesReceived.Load())
}

func TestQuery_TwoBursts_SlowPolling(t *testing.T) {
	env := newTestEnv(t, WithPollInterval(MaxPollInterval))

	// the second burst lands between two polls
	env.port.emitAfter(0, "3.")
	env.port.emitAfter(60*time.Millisecond, "900")
	secondBurst := env.clock.Now().Add(60 * time.Millisecond)

	reply, ok := env.ctrl.Query(3, "T?")
	require.True(t, ok)
	assert.Equal(t, "3.900", reply)

	waited := env.clock.Now().Sub(secondBurst)
	assert.GreaterOrEqual(t, waited, 500*time.Millisecond)
	assert.LessOrEqual(t, waited, 550*time.Millisecond)
}

func TestQuery_NoResponse(t *testing.T) {
	env := newTestEnv(t)
	begin := env.clock.Now()

	reply, ok := env.ctrl.Query(3, "T?")
	assert.True(t, ok)
	assert.Empty(t, reply)
	assert.GreaterOrEqual(t, env.clock.Now().Sub(begin), DefaultReadTimeout)
	assert.Contains(t, env.log.Messages("Warn"), "gpib query got no response")
	assert.EqualValues(t, 1, env.ctrl.Metrics().EmptyResponseCount.Load())
}

func TestQuery_ReadFault(t *testing.T) {
	env := newTestEnv(t)
	env.port.readErr = errors.New("device disconnected")

	var (
		reply string
		ok    bool
	)
	assert.NotPanics(t, func() {
		reply, ok = env.ctrl.Query(3, "T?")
	})
	assert.False(t, ok)
	assert.Empty(t, reply)

	errs := loggedErrors(env.log)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrTransport)
}

func TestQuery_WriteFault(t *testing.T) {
	env := newTestEnv(t)
	env.port.writeErr = func([]byte) error { return errors.New("write failed") }
	env.port.emitAfter(0, "stale")

	reply, ok := env.ctrl.Query(3, "T?")
	assert.False(t, ok)
	assert.Empty(t, reply)
	assert.Len(t, env.port.bursts, 1, "nothing is read after a failed write phase")
}

func TestWrite_Metrics(t *testing.T) {
	env := newTestEnv(t)
	m := env.ctrl.Metrics()
	sentAfterBootstrap := m.BytesSent.Load()

	require.True(t, env.ctrl.Write(5, "SO1"))

	assert.EqualValues(t, 1, m.WriteCount.Load())
	assert.EqualValues(t, 5, m.ControllerCommandCount.Load())
	assert.EqualValues(t, len("++addr 5\r\nSO1\r\n"), m.BytesSent.Load()-sentAfterBootstrap)
	assert.EqualValues(t, 1, m.OpenCount.Load())
	assert.Zero(t, m.FaultCount.Load())
}
