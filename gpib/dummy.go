package gpib

import (
	"errors"

	"github.com/arloliu/go-gpib/logger"
)

var errDummyDisposed = errors.New("dummy bus disposed")

// Dummy is a Bus that talks to no hardware.
//
// It logs every command like a real adapter would and answers every query
// with Reply. It is meant for developing drivers and front-ends on machines
// without a controller attached.
type Dummy struct {
	// Reply is returned by every Query.
	Reply string

	logger   logger.Logger
	open     bool
	disposed bool
}

var _ Bus = (*Dummy)(nil)

// NewDummy creates a Dummy bus. A nil l selects the package default logger.
func NewDummy(l logger.Logger, reply string) *Dummy {
	if l == nil {
		l = logger.GetLogger()
	}

	return &Dummy{Reply: reply, logger: l.With("bus", "dummy")}
}

// IsOpen reports whether the dummy channel is open.
func (d *Dummy) IsOpen() bool {
	return d.open
}

// Open marks the bus open. It fails after Dispose.
func (d *Dummy) Open() error {
	if d.disposed {
		return errDummyDisposed
	}
	d.open = true

	return nil
}

// Close marks the bus closed.
func (d *Dummy) Close() {
	d.open = false
}

// Write logs command and reports success for any valid address.
func (d *Dummy) Write(address int, command string) bool {
	d.logger.Info("gpib command", "address", address, "command", command)

	return d.transact(address)
}

// Query logs command and answers with Reply.
func (d *Dummy) Query(address int, command string) (string, bool) {
	d.logger.Info("gpib command", "address", address, "command", command)
	if !d.transact(address) {
		return "", false
	}

	return d.Reply, true
}

// Dispose closes the bus for good.
func (d *Dummy) Dispose() {
	d.open = false
	d.disposed = true
}

func (d *Dummy) transact(address int) bool {
	if err := ValidateAddress(address); err != nil {
		d.logger.Error("gpib transaction rejected", "error", err)
		return false
	}
	if err := d.Open(); err != nil {
		d.logger.Error("gpib transaction failed", "error", err)
		return false
	}

	return true
}
