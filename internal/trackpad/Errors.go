package trackpad

import (
	"errors"
	"fmt"
)

// DeviceError The virtual device could not be registered or written to.
// The owning session cannot continue after one.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// CapacityError A touch could not be given a slot.
type CapacityError struct {
	ID int32
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("cannot assign touch %d to slot: all %d slots in use", e.ID, NumSlots)
}

// ProtocolError A message decoded fine but makes no sense in the current state.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "protocol: " + e.Reason
}

// IsFatal reports whether err must end the session.
func IsFatal(err error) bool {
	var devErr *DeviceError
	return errors.As(err, &devErr)
}
