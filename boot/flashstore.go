package boot

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/close2/ota-common/flash"
)

// Flash record format, little-endian:
//
//	magic(4) version(1) active(1) revert(1) flags(1) attempts(4)
//	per slot: fw_addr(4) fw_size(4) fs_addr(4) fs_size(4)
//	crc32(4) over everything before it
const (
	flashStoreMagic   = 0x4F544142 // "BATO"
	flashStoreVersion = 1

	flagFirstBoot = 1 << 0
	flagFWUpdated = 1 << 1
	flagMergeFS   = 1 << 2

	flashRecordSize = 12 + NumSlots*16 + 4
)

// FlashStore persists the boot configuration in a raw flash sector, the
// way a boot config sector works on-device. The record carries a magic,
// a version and a CRC; anything that fails those checks is unreadable.
type FlashStore struct {
	dev  flash.Device
	addr uint32
}

// NewFlashStore returns a store backed by the record at addr on dev.
func NewFlashStore(dev flash.Device, addr uint32) *FlashStore {
	return &FlashStore{dev: dev, addr: addr}
}

func (s *FlashStore) Load() (Config, error) {
	rec := make([]byte, flashRecordSize)
	if _, err := s.dev.ReadAt(rec, int64(s.addr)); err != nil {
		return Config{}, fmt.Errorf("%w: read record at 0x%x: %v", ErrStoreUnavailable, s.addr, err)
	}
	if got := binary.LittleEndian.Uint32(rec[0:4]); got != flashStoreMagic {
		return Config{}, fmt.Errorf("%w: bad magic 0x%08x at 0x%x", ErrStoreUnavailable, got, s.addr)
	}
	if rec[4] != flashStoreVersion {
		return Config{}, fmt.Errorf("%w: unsupported record version %d", ErrStoreUnavailable, rec[4])
	}
	body := rec[:flashRecordSize-4]
	want := binary.LittleEndian.Uint32(rec[flashRecordSize-4:])
	if got := crc32.ChecksumIEEE(body); got != want {
		return Config{}, fmt.Errorf("%w: record crc 0x%08x, want 0x%08x", ErrStoreUnavailable, got, want)
	}

	var c Config
	c.ActiveSlot = int(rec[5])
	c.RevertSlot = int(rec[6])
	flags := rec[7]
	c.FirstBoot = flags&flagFirstBoot != 0
	c.FWUpdated = flags&flagFWUpdated != 0
	c.MergeFS = flags&flagMergeFS != 0
	c.BootAttempts = int(binary.LittleEndian.Uint32(rec[8:12]))
	for i := 0; i < NumSlots; i++ {
		off := 12 + i*16
		c.Slots[i].FWAddr = binary.LittleEndian.Uint32(rec[off:])
		c.Slots[i].FWSize = binary.LittleEndian.Uint32(rec[off+4:])
		c.Slots[i].FSAddr = binary.LittleEndian.Uint32(rec[off+8:])
		c.Slots[i].FSSize = binary.LittleEndian.Uint32(rec[off+12:])
	}
	return c, nil
}

func (s *FlashStore) Save(c Config) error {
	rec := make([]byte, flashRecordSize)
	binary.LittleEndian.PutUint32(rec[0:4], flashStoreMagic)
	rec[4] = flashStoreVersion
	rec[5] = byte(c.ActiveSlot)
	rec[6] = byte(c.RevertSlot)
	var flags byte
	if c.FirstBoot {
		flags |= flagFirstBoot
	}
	if c.FWUpdated {
		flags |= flagFWUpdated
	}
	if c.MergeFS {
		flags |= flagMergeFS
	}
	rec[7] = flags
	binary.LittleEndian.PutUint32(rec[8:12], uint32(c.BootAttempts))
	for i := 0; i < NumSlots; i++ {
		off := 12 + i*16
		binary.LittleEndian.PutUint32(rec[off:], c.Slots[i].FWAddr)
		binary.LittleEndian.PutUint32(rec[off+4:], c.Slots[i].FWSize)
		binary.LittleEndian.PutUint32(rec[off+8:], c.Slots[i].FSAddr)
		binary.LittleEndian.PutUint32(rec[off+12:], c.Slots[i].FSSize)
	}
	crc := crc32.ChecksumIEEE(rec[:flashRecordSize-4])
	binary.LittleEndian.PutUint32(rec[flashRecordSize-4:], crc)

	if _, err := s.dev.WriteAt(rec, int64(s.addr)); err != nil {
		return fmt.Errorf("write record at 0x%x: %w", s.addr, err)
	}
	return nil
}
