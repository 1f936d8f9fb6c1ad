package prologix

import (
	"fmt"

	"github.com/arloliu/go-gpib/gpib"
)

// Write sends command to the device at address.
//
// The transaction re-asserts the target address with "++addr" before the
// escaped, terminated payload, even if the previous transaction used the same
// address. After Write returns, the controller's active address is address.
// Failures are logged; the result is false if the command was not delivered.
func (c *Controller) Write(address int, command string) bool {
	c.logger.Info("gpib command", "address", address, "command", command)
	c.metrics.incWriteCount()

	if err := c.send(address, command); err != nil {
		c.fault("gpib write failed", err, "address", address)
		return false
	}

	return true
}

// Query sends command to the device at address and returns its reply.
//
// The reply is assembled by an IdleReader using the configured read timeout,
// so Query always blocks for at least that long. ok is false if a transport
// fault happened in either the write or the read phase. A device that sends
// nothing yields ("", true).
func (c *Controller) Query(address int, command string) (string, bool) {
	c.logger.Info("gpib command", "address", address, "command", command)
	c.metrics.incQueryCount()

	if err := c.send(address, command); err != nil {
		c.fault("gpib query failed", err, "address", address)
		return "", false
	}

	reply, err := c.readWithTimeout()
	if err != nil {
		c.fault("gpib query failed", err, "address", address)
		return "", false
	}

	if len(reply) == 0 {
		c.metrics.incEmptyResponseCount()
		c.logger.Warn("gpib query got no response", "address", address, "command", command)
	} else {
		c.logger.Debug("gpib response", "address", address, "response", string(reply))
	}

	return string(reply), true
}

// send performs the write phase of a transaction: address switch, then payload.
func (c *Controller) send(address int, command string) error {
	if err := gpib.ValidateAddress(address); err != nil {
		return err
	}

	if err := c.ensureOpen(); err != nil {
		return err
	}

	if !c.controllerCommand(cmdAddress, address) {
		return fmt.Errorf("%w: address %d", ErrAddressSwitch, address)
	}

	return c.writeAll(EscapeAndTerminate(command))
}

// readWithTimeout collects the response of the addressed device.
func (c *Controller) readWithTimeout() ([]byte, error) {
	if c.port == nil {
		return nil, ErrPortNotOpen
	}

	r := &IdleReader{
		Source: c.port,
		Clock:  c.clock,
		Idle:   c.cfg.ReadTimeout(),
		Poll:   c.cfg.PollInterval(),
	}

	reply, err := r.ReadUntilIdle()
	c.metrics.addBytesReceived(len(reply))
	if err != nil {
		return nil, fmt.Errorf("%w: read: %w", ErrTransport, err)
	}

	return reply, nil
}
