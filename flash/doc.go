// Package flash defines the raw flash access layer used by the updater:
// the Device abstraction over addressable flash, the WriteCursor that
// enforces the platform's write granularity, and the Layout describing the
// fixed A/B slot geometry of the part.
//
// A Device is anything addressable by absolute offset. A flash image file
// opened with os.OpenFile satisfies it directly; MemDevice provides an
// in-memory device for tests and examples:
//
//	dev := flash.NewMemDevice(2 << 20)
//	cur := flash.OpenCursor(dev, 0x2000, 0x1000)
//	n, err := cur.Write(data)     // consumes whole granules only
//	err = cur.Flush(data[n:])     // trailing sub-granule bytes
//
// Write only ever consumes multiples of Granularity; the remainder is left
// for the caller to resupply, or to hand to Flush at end of stream.
package flash
