package flash

import "fmt"

// CapacityError indicates that a write would run past the end of the
// cursor's region.
type CapacityError struct {
	Addr      uint32
	Capacity  uint32
	Requested uint32
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("write past region @ 0x%x: %d bytes requested, capacity %d",
		e.Addr, e.Requested, e.Capacity)
}
