package twi

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when the controller does not report completion
	// within the configured timeout.
	ErrTimeout = errors.New("twi: timeout waiting for bus")

	// ErrNotAcknowledged is matched by status errors for which the addressed
	// device did not acknowledge an address or data byte.
	ErrNotAcknowledged = errors.New("twi: not acknowledged")

	// ErrInvalidFrequency is returned by Configure when the requested bus
	// frequency cannot be produced from the CPU frequency.
	ErrInvalidFrequency = errors.New("twi: invalid bus frequency")
)

// StatusError reports an unexpected controller status after an operation.
// It is only produced when acknowledgment checking is enabled.
type StatusError struct {
	Op     string
	Status uint8
}

func (e *StatusError) Error() string {
	if e.nack() {
		return fmt.Sprintf("twi: %s: not acknowledged (status 0x%02X)", e.Op, e.Status)
	}
	return fmt.Sprintf("twi: %s: unexpected status 0x%02X", e.Op, e.Status)
}

// Unwrap returns ErrNotAcknowledged for the NACK status codes.
func (e *StatusError) Unwrap() error {
	if e.nack() {
		return ErrNotAcknowledged
	}
	return nil
}

func (e *StatusError) nack() bool {
	switch e.Status {
	case StatusAddrWriteNack, StatusDataWriteNack, StatusAddrReadNack:
		return true
	}
	return false
}
