package flash

import "io"

// Granularity is the minimum byte multiple the flash write primitive
// accepts per call. Sub-granule tails are padded and flushed explicitly.
const Granularity = 4

// ErasedByte is the value of an erased flash cell, used to pad sub-granule
// tail writes up to the next granule boundary.
const ErasedByte = 0xFF

// Device is addressable flash. Offsets are absolute device addresses.
// A flash image file (*os.File) satisfies Device directly.
type Device interface {
	io.ReaderAt
	io.WriterAt
}

// NumSlots is the number of firmware slots. The A/B scheme is fixed.
const NumSlots = 2

// Region is a fixed flash region.
type Region struct {
	Addr     uint32 `yaml:"addr"`
	Capacity uint32 `yaml:"capacity"`
}

// SlotRegions holds the firmware and filesystem regions of one slot.
type SlotRegions struct {
	FW Region `yaml:"fw"`
	FS Region `yaml:"fs"`
}

// Layout describes the flash geometry of the part: the bootloader region,
// the address of the flash parameter bytes, and the two firmware slots.
// Addresses are fixed for the lifetime of a device.
type Layout struct {
	// Boot is the bootloader region, ending at the boot config sector.
	Boot Region `yaml:"boot"`

	// FlashParamsAddr is where the flash mode/size parameter bytes live.
	// They are not part of the bootloader image and must survive a
	// bootloader update.
	FlashParamsAddr uint32 `yaml:"flash_params_addr"`

	Slots [NumSlots]SlotRegions `yaml:"slots"`
}

// FlashParamsSize is the number of parameter bytes preserved across a
// bootloader update. Only bytes 2 and 3 vary between parts, but the first
// two are constant, so all four are read and written together.
const FlashParamsSize = 4

// DefaultLayout returns the geometry of a 2 MiB part with two 1 MiB slots.
func DefaultLayout() Layout {
	return Layout{
		Boot:            Region{Addr: 0x0, Capacity: 0x1000},
		FlashParamsAddr: 0x0,
		Slots: [NumSlots]SlotRegions{
			{
				FW: Region{Addr: 0x2000, Capacity: 0xE0000},
				FS: Region{Addr: 0xE2000, Capacity: 0x1E000},
			},
			{
				FW: Region{Addr: 0x102000, Capacity: 0xE0000},
				FS: Region{Addr: 0x1E2000, Capacity: 0x1E000},
			},
		},
	}
}
