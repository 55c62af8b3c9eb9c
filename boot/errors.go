package boot

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable indicates that the backing boot config store could
// not be read.
var ErrStoreUnavailable = errors.New("boot config store unavailable")

// InvalidSlotError indicates a slot id outside the A/B scheme.
type InvalidSlotError struct {
	Slot int
}

func (e *InvalidSlotError) Error() string {
	return fmt.Sprintf("invalid slot id %d: must be 0 or 1", e.Slot)
}

// PersistError indicates that an updated boot config could not be saved.
// The previously persisted config remains in effect.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist boot config: %v", e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
