package inject

import "fmt"

// DeviceUnavailableError means the virtual keyboard could not be opened
// or failed to send the paste chord.
type DeviceUnavailableError struct {
	Err error
}

func (e *DeviceUnavailableError) Error() string {
	return fmt.Sprintf("virtual keyboard unavailable: %v", e.Err)
}

func (e *DeviceUnavailableError) Unwrap() error { return e.Err }

// ClipboardError is a failed clipboard read, write or restore.
type ClipboardError struct {
	Op  string
	Err error
}

func (e *ClipboardError) Error() string {
	return fmt.Sprintf("clipboard %s failed: %v", e.Op, e.Err)
}

func (e *ClipboardError) Unwrap() error { return e.Err }
