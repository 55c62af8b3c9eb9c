package flash

import "fmt"

// WriteCursor drives a sequential write into a fixed flash region.
// Write consumes whole granules only; the trailing sub-granule remainder of
// a stream is flushed once, at the end, with Flush.
type WriteCursor struct {
	dev      Device
	addr     uint32
	capacity uint32
	written  uint32
}

// OpenCursor opens a write cursor over the region [addr, addr+capacity).
func OpenCursor(dev Device, addr, capacity uint32) *WriteCursor {
	return &WriteCursor{dev: dev, addr: addr, capacity: capacity}
}

// Addr returns the base address of the region being written.
func (c *WriteCursor) Addr() uint32 { return c.addr }

// Written returns the number of bytes written through the cursor so far.
func (c *WriteCursor) Written() uint32 { return c.written }

// Write writes the largest Granularity-multiple prefix of p at the current
// position and returns the number of bytes consumed. The remainder is left
// for the caller to resupply later. Consuming zero bytes is not an error.
func (c *WriteCursor) Write(p []byte) (int, error) {
	n := len(p) / Granularity * Granularity
	if n == 0 {
		return 0, nil
	}
	if c.written+uint32(n) > c.capacity {
		return 0, &CapacityError{Addr: c.addr, Capacity: c.capacity, Requested: c.written + uint32(n)}
	}
	if _, err := c.dev.WriteAt(p[:n], int64(c.addr+c.written)); err != nil {
		return 0, fmt.Errorf("write %d bytes at 0x%x: %w", n, c.addr+c.written, err)
	}
	c.written += uint32(n)
	return n, nil
}

// Flush writes the final sub-granule tail of a stream, padded with erased
// bytes up to the granule boundary. len(tail) must be below Granularity.
// A zero-length tail is a no-op.
func (c *WriteCursor) Flush(tail []byte) error {
	if len(tail) >= Granularity {
		return fmt.Errorf("tail of %d bytes exceeds write granularity %d", len(tail), Granularity)
	}
	if len(tail) == 0 {
		return nil
	}
	if c.written+uint32(len(tail)) > c.capacity {
		return &CapacityError{Addr: c.addr, Capacity: c.capacity, Requested: c.written + uint32(len(tail))}
	}
	// The padding may run past the declared capacity; regions are
	// granule-aligned, so the spill stays inside the destination.
	padded := make([]byte, Granularity)
	for i := range padded {
		padded[i] = ErasedByte
	}
	copy(padded, tail)
	if _, err := c.dev.WriteAt(padded, int64(c.addr+c.written)); err != nil {
		return fmt.Errorf("flush %d tail bytes at 0x%x: %w", len(tail), c.addr+c.written, err)
	}
	c.written += uint32(len(tail))
	return nil
}
