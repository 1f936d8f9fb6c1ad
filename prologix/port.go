package prologix

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"go.bug.st/serial"
)

// serialReadTimeout bounds a single Read on the real port, so a Read returns
// whatever is currently buffered instead of waiting for more.
const serialReadTimeout = time.Millisecond

// Port is the byte channel to the controller.
//
// Read must return promptly with (0, nil) when no data is available, the way
// go.bug.st/serial ports do once a read timeout is set.
type Port interface {
	io.ReadWriteCloser
}

// PortOpener opens the serial port described by cfg.
type PortOpener func(cfg *Config) (Port, error)

// OpenSerialPort opens cfg.PortName() with the controller's line mode.
//
// go.bug.st/serial does not configure RTS/CTS hardware handshaking, so RTS is
// asserted at open and left asserted, which is what the controller expects
// from a host that never throttles it.
func OpenSerialPort(cfg *Config) (Port, error) {
	p, err := serial.Open(cfg.PortName(), cfg.Mode())
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrTransport, cfg.PortName(), err)
	}

	if err := p.SetReadTimeout(serialReadTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("%w: set read timeout on %s: %w", ErrTransport, cfg.PortName(), err)
	}

	return p, nil
}

// ListPorts returns the serial ports present on the system.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("%w: list ports: %w", ErrTransport, err)
	}

	return ports, nil
}

// isTimeout reports whether err only signals that no data arrived in time.
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
