package prologix

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/arloliu/go-gpib/gpib"
	"github.com/arloliu/go-gpib/logger"
)

// State represents the lifecycle stage of the controller's serial channel.
type State uint32

// Channel states. The channel moves Closed → Opening → Open → Closing → Closed.
const (
	// ClosedState indicates the port is closed and may be opened.
	ClosedState State = iota
	// OpeningState indicates the port is being opened.
	OpeningState
	// OpenState indicates the port is open.
	OpenState
	// ClosingState indicates the port was closed and the settle delay has not elapsed yet.
	ClosingState
)

// String returns string representation of the state.
func (s State) String() string {
	switch s {
	case ClosedState:
		return "closed"
	case OpeningState:
		return "opening"
	case OpenState:
		return "open"
	case ClosingState:
		return "closing"
	default:
		return "unknown"
	}
}

// Controller is a session with one GPIB-USB controller.
//
// It owns the serial port, runs the bootstrap handshake once at construction,
// and carries out addressed device transactions. See the package
// documentation for the concurrency requirements.
type Controller struct {
	cfg    *Config
	logger logger.Logger
	clock  Clock

	port     Port
	state    State
	resumeAt time.Time
	disposed bool

	metrics Metrics
}

var _ gpib.Bus = (*Controller)(nil)

// NewController creates a session with the controller attached to portName
// and performs the bootstrap handshake.
//
// Only configuration errors are returned. If the port cannot be opened the
// handshake failures are logged, and every later command logs its own failure;
// the controller never becomes a distinct "disconnected" object.
func NewController(portName string, opts ...Option) (*Controller, error) {
	cfg, err := NewConfig(portName, opts...)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:    cfg,
		logger: cfg.GetLogger().With("port", cfg.PortName()),
		clock:  cfg.Clock(),
		state:  ClosedState,
	}

	c.bootstrap()

	return c, nil
}

// bootstrap puts the controller in a known configuration. It runs exactly
// once per session and is not repeated when the port is reopened.
func (c *Controller) bootstrap() {
	c.controllerCommand(cmdIFC)
	c.controllerCommand(cmdMode, modeController)
	c.controllerCommand(cmdEOI, eoiEnable)
	c.controllerCommand(cmdEOS, eosCRLF)
}

// Config returns the controller's configuration.
func (c *Controller) Config() *Config { return c.cfg }

// PortName returns the serial port identifier.
func (c *Controller) PortName() string { return c.cfg.PortName() }

// Metrics returns the controller's counters.
func (c *Controller) Metrics() *Metrics { return &c.metrics }

// State returns the current channel state. A Closing channel whose settle
// delay has elapsed reports Closed.
func (c *Controller) State() State {
	if c.state == ClosingState && !c.clock.Now().Before(c.resumeAt) {
		c.state = ClosedState
	}

	return c.state
}

// IsOpen reports whether the serial port is open.
func (c *Controller) IsOpen() bool {
	return c.State() == OpenState
}

// Ready reports whether the channel can be used without waiting: it is open,
// or closed with its settle delay elapsed. A disposed controller is never ready.
func (c *Controller) Ready() bool {
	return !c.disposed && c.State() != ClosingState
}

// ReadyAt returns the time at which the last close's settle delay ends.
// It is the zero time if the port was never closed.
func (c *Controller) ReadyAt() time.Time {
	return c.resumeAt
}

// Disposed reports whether Dispose has been called.
func (c *Controller) Disposed() bool {
	return c.disposed
}

// Open opens the serial port if it is not open yet, first waiting out any
// remaining settle delay of a previous close.
func (c *Controller) Open() error {
	return c.ensureOpen()
}

// Close closes the port if it is open, then blocks for the settle delay so a
// subsequent open does not race the adapter's own close cycle.
func (c *Controller) Close() {
	c.clock.Sleep(c.CloseAsync().Sub(c.clock.Now()))
}

// CloseAsync closes the port if it is open and returns without waiting.
//
// The channel stays in ClosingState until the returned time; callers that
// must not block can poll Ready instead of sleeping. Any operation that needs
// the port before then waits for the remainder of the delay.
func (c *Controller) CloseAsync() time.Time {
	if c.port != nil {
		if err := c.port.Close(); err != nil {
			c.fault("serial port close failed", fmt.Errorf("%w: close: %w", ErrTransport, err))
		}
		c.port = nil
		c.logger.Debug("serial port closed")
	}

	c.state = ClosingState
	c.resumeAt = c.clock.Now().Add(c.cfg.SettleDelay())

	return c.resumeAt
}

// Dispose releases the controller. The port is closed with the settle-delay
// guarantee whatever state it is in; in-flight transactions are not waited
// for. Only the first call has an effect.
func (c *Controller) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.Close()
	c.logger.Debug("controller disposed")
}

// ensureOpen lazily opens the port.
func (c *Controller) ensureOpen() error {
	if c.disposed {
		return ErrDisposed
	}

	switch c.State() {
	case OpenState:
		return nil
	case ClosingState:
		c.clock.Sleep(c.resumeAt.Sub(c.clock.Now()))
	}

	c.state = OpeningState
	port, err := c.cfg.opener(c.cfg)
	if err != nil {
		c.state = ClosedState
		if !errors.Is(err, ErrTransport) {
			err = fmt.Errorf("%w: open %s: %w", ErrTransport, c.cfg.PortName(), err)
		}
		return err
	}

	c.port = port
	c.state = OpenState
	c.metrics.incOpenCount()
	c.logger.Debug("serial port opened")

	return nil
}

// writeAll writes all bytes in data to the port.
func (c *Controller) writeAll(data []byte) error {
	if c.port == nil {
		return ErrPortNotOpen
	}

	for written := 0; written < len(data); {
		n, err := c.port.Write(data[written:])
		written += n
		c.metrics.addBytesSent(n)

		if err != nil {
			return fmt.Errorf("%w: write: %w", ErrTransport, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: write: %w", ErrTransport, io.ErrShortWrite)
		}
	}

	return nil
}

// fault logs err and counts it.
func (c *Controller) fault(msg string, err error, keysAndValues ...any) {
	c.metrics.incFaultCount()
	c.logger.Error(msg, append(keysAndValues, "error", err)...)
}
