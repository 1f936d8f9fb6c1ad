package prologix

import "errors"

var (
	// ErrTransport wraps I/O failures of the serial channel during open, write or read.
	ErrTransport = errors.New("prologix: transport fault")

	// ErrPortNotOpen indicates an operation that requires an open serial port was attempted without one.
	ErrPortNotOpen = errors.New("prologix: port is not open")

	// ErrDisposed indicates the controller has been disposed.
	ErrDisposed = errors.New("prologix: controller disposed")

	// ErrAddressSwitch indicates the address-switch meta-command of a transaction could not be sent,
	// so the payload was withheld.
	ErrAddressSwitch = errors.New("prologix: address switch failed")
)
