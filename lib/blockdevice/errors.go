package blockdevice

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("volume not found")
	ErrNodeNotFound    = errors.New("droplet not found")
	ErrAlreadyAttached = errors.New("volume already attached")
	ErrNotAttached     = errors.New("volume not attached")
	ErrAwaitTimeout    = errors.New("timed out waiting for action")
)

// ActionError reports a provider action that reached a terminal state other
// than completed. Status carries the provider's raw status string.
type ActionError struct {
	ActionID int
	Status   string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %d failed (%s)", e.ActionID, e.Status)
}
