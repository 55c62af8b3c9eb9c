package updater

import (
	"errors"

	"github.com/close2/ota-common/boot"
	"github.com/close2/ota-common/flash"
)

// copyChunkSize is how many bytes each snapshot copy iteration moves.
// The watchdog is fed once per chunk.
const copyChunkSize = 512

var errDigestMismatch = errors.New("destination digest does not match source")

// CreateSnapshot duplicates the active slot into the inactive slot:
// firmware region first, then filesystem. Each region copy is skipped if
// the destination already matches the source digest, and verified after
// copying. On success the destination slot's persisted size and address
// metadata are updated, but the active/revert assignment is deliberately
// left alone: a snapshot is a cold backup, not an activation.
//
// Returns the destination slot id. A failure identifies the responsible
// region via CopyVerifyError.
func (u *Updater) CreateSnapshot() (int, error) {
	cfg, err := u.store.Load()
	if err != nil {
		return -1, err
	}
	src := resolveSlot(u.layout, cfg, cfg.ActiveSlot)
	dst := resolveSlot(u.layout, cfg, boot.OtherSlot(cfg.ActiveSlot))

	u.log.Info().
		Int("src", src.id).Int("dst", dst.id).
		Uint32("fw_addr", src.fwAddr).Uint32("fw_size", src.fwSize).
		Uint32("fs_addr", src.fsAddr).Uint32("fs_size", src.fsSize).
		Msg("snapshot")

	if err := u.copyRegion(src.fwAddr, dst.fwAddr, src.fwSize); err != nil {
		return -1, &CopyVerifyError{Region: "fw", Err: err}
	}
	if err := u.copyRegion(src.fsAddr, dst.fsAddr, src.fsSize); err != nil {
		return -1, &CopyVerifyError{Region: "fs", Err: err}
	}

	cfg.Slots[dst.id] = boot.SlotConfig{
		FWAddr: dst.fwAddr,
		FWSize: src.fwSize,
		FSAddr: dst.fsAddr,
		FSSize: src.fsSize,
	}
	if err := u.store.Save(cfg); err != nil {
		return -1, &boot.PersistError{Err: err}
	}
	u.log.Info().Int("slot", dst.id).Msg("snapshot created")
	return dst.id, nil
}

// copyRegion stream-copies length bytes between flash regions, skipping
// the copy entirely if the destination already matches, and verifies the
// result against the source digest.
func (u *Updater) copyRegion(srcAddr, dstAddr, length uint32) error {
	sum, err := u.computeChecksum(srcAddr, length)
	if err != nil {
		return err
	}
	if u.verifyChecksum(dstAddr, length, sum, false) {
		u.log.Debug().Uint32("len", length).
			Uint32("src", srcAddr).Uint32("dst", dstAddr).
			Msg("skip copying, digest matches")
		return nil
	}
	u.log.Debug().Uint32("len", length).
		Uint32("src", srcAddr).Uint32("dst", dstAddr).Str("sha1", sum).
		Msg("copy region")

	cur := flash.OpenCursor(u.dev, dstAddr, length)
	buf := make([]byte, copyChunkSize)
	var offset uint32
	for offset < length {
		n := uint32(len(buf))
		if offset+n > length {
			n = length - offset
		}
		if _, err := u.dev.ReadAt(buf[:n], int64(srcAddr+offset)); err != nil {
			return &FlashReadError{Addr: srcAddr + offset, Len: n, Err: err}
		}
		written, err := cur.Write(buf[:n])
		if err != nil {
			return &WriteError{Addr: dstAddr, Err: err}
		}
		if uint32(written) != n {
			// Sub-granule remainder of the final chunk: flush it
			// immediately rather than carrying it over.
			if err := cur.Flush(buf[written:n]); err != nil {
				return &WriteError{Addr: dstAddr, Err: err}
			}
		}
		offset += n
		u.feedWatchdog()
	}

	if !u.verifyChecksum(dstAddr, length, sum, true) {
		return errDigestMismatch
	}
	return nil
}
