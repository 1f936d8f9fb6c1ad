package prologix

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-gpib/logger"
	"go.bug.st/serial"
)

// Fixed serial parameters of the GPIB-USB controller.
const (
	BaudRate = 115200
	DataBits = 8
)

// Default timing values.
const (
	DefaultReadTimeout  = 500 * time.Millisecond // Idle time that ends a response
	DefaultSettleDelay  = 250 * time.Millisecond // Close-to-reopen delay
	DefaultPollInterval = 5 * time.Millisecond   // Sleep between empty polls
)

// Timing range limits.
const (
	MinReadTimeout = 10 * time.Millisecond
	MaxReadTimeout = 60 * time.Second

	MaxSettleDelay = 10 * time.Second

	MinPollInterval time.Duration = 0
	// MaxPollInterval bounds how late a byte may be noticed, and so how far a
	// query may return past the idle timeout after the last byte.
	MaxPollInterval = 25 * time.Millisecond
)

// ErrEmptyPortName indicates that no serial port was given.
var ErrEmptyPortName = errors.New("prologix: empty port name")

// Config holds the channel configuration of a Controller.
//
// The serial line parameters are fixed by the controller hardware; only the
// port and the timing are configurable.
type Config struct {
	portName string

	readTimeout  time.Duration
	settleDelay  time.Duration
	pollInterval time.Duration

	logger logger.Logger
	clock  Clock
	opener PortOpener
}

// NewConfig creates a Config for the controller attached to portName
// (for example "/dev/ttyUSB0" or "COM3").
//
// opts are functional options applied in order; see With* functions.
func NewConfig(portName string, opts ...Option) (*Config, error) {
	if portName == "" {
		return nil, ErrEmptyPortName
	}

	cfg := &Config{
		portName:     portName,
		readTimeout:  DefaultReadTimeout,
		settleDelay:  DefaultSettleDelay,
		pollInterval: DefaultPollInterval,
		logger:       logger.GetLogger(),
		clock:        SystemClock(),
		opener:       OpenSerialPort,
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// PortName returns the serial port identifier.
func (cfg *Config) PortName() string { return cfg.portName }

// ReadTimeout returns the idle time that ends a query response.
func (cfg *Config) ReadTimeout() time.Duration { return cfg.readTimeout }

// SettleDelay returns the delay between closing the port and it being ready to reopen.
func (cfg *Config) SettleDelay() time.Duration { return cfg.settleDelay }

// PollInterval returns the sleep between polls that found no data.
func (cfg *Config) PollInterval() time.Duration { return cfg.pollInterval }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// Clock returns the configured clock.
func (cfg *Config) Clock() Clock { return cfg.clock }

// Mode returns the serial line mode: 115200 baud, 8 data bits, no parity,
// 1 stop bit, with DTR and RTS asserted when the port opens.
func (cfg *Config) Mode() *serial.Mode {
	return &serial.Mode{
		BaudRate: BaudRate,
		DataBits: DataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
		InitialStatusBits: &serial.ModemOutputBits{
			RTS: true,
			DTR: true,
		},
	}
}

// --- Option ---

// Option is a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithReadTimeout sets the idle time that ends a query response. Must be in
// [MinReadTimeout, MaxReadTimeout].
func WithReadTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < MinReadTimeout || d > MaxReadTimeout {
			return fmt.Errorf("prologix: read timeout %v out of range [%v, %v]", d, MinReadTimeout, MaxReadTimeout)
		}
		cfg.readTimeout = d

		return nil
	})
}

// WithSettleDelay sets the close-to-reopen delay. Must be in [0, MaxSettleDelay].
func WithSettleDelay(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < 0 || d > MaxSettleDelay {
			return fmt.Errorf("prologix: settle delay %v out of range [0, %v]", d, MaxSettleDelay)
		}
		cfg.settleDelay = d

		return nil
	})
}

// WithPollInterval sets the sleep between polls that found no data.
// Zero polls without sleeping. Must be in [MinPollInterval, MaxPollInterval].
func WithPollInterval(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < MinPollInterval || d > MaxPollInterval {
			return fmt.Errorf("prologix: poll interval %v out of range [%v, %v]", d, MinPollInterval, MaxPollInterval)
		}
		cfg.pollInterval = d

		return nil
	})
}

// WithLogger sets the logger. A nil logger is rejected.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("prologix: nil logger")
		}
		cfg.logger = l

		return nil
	})
}

// WithClock replaces the wall clock used for idle-timeout accounting and
// settle delays.
func WithClock(c Clock) Option {
	return optFunc(func(cfg *Config) error {
		if c == nil {
			return errors.New("prologix: nil clock")
		}
		cfg.clock = c

		return nil
	})
}

// WithPortOpener replaces the function that opens the serial port.
func WithPortOpener(opener PortOpener) Option {
	return optFunc(func(cfg *Config) error {
		if opener == nil {
			return errors.New("prologix: nil port opener")
		}
		cfg.opener = opener

		return nil
	})
}
