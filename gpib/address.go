package gpib

import (
	"errors"
	"fmt"
)

// Primary address limits. Address 31 is reserved by IEEE-488 for the
// untalk/unlisten commands.
const (
	MinAddress = 0
	MaxAddress = 30
)

// ErrInvalidAddress indicates that a primary address is outside [MinAddress, MaxAddress].
var ErrInvalidAddress = errors.New("invalid gpib primary address")

// ValidateAddress returns an error wrapping ErrInvalidAddress if addr is not a valid primary address.
func ValidateAddress(addr int) error {
	if addr < MinAddress || addr > MaxAddress {
		return fmt.Errorf("%w: %d, should be in range of [%d, %d]", ErrInvalidAddress, addr, MinAddress, MaxAddress)
	}

	return nil
}
