package updater

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// checksumChunkSize is how many bytes are read from flash per hash update.
// The watchdog is fed once per chunk.
const checksumChunkSize = 64

// computeChecksum streams length bytes from flash at addr through SHA-1
// and returns the lowercase hex digest.
func (u *Updater) computeChecksum(addr, length uint32) (string, error) {
	h := sha1.New()
	buf := make([]byte, checksumChunkSize)
	for length > 0 {
		n := uint32(len(buf))
		if n > length {
			n = length
		}
		if _, err := u.dev.ReadAt(buf[:n], int64(addr)); err != nil {
			u.log.Error().Uint32("addr", addr).Uint32("len", n).Err(err).
				Msg("flash read failed")
			return "", &FlashReadError{Addr: addr, Len: n, Err: err}
		}
		h.Write(buf[:n])
		u.feedWatchdog()
		addr += n
		length -= n
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// verifyChecksum compares the digest of the flash region against expected,
// case-insensitively. A mismatch is logged as an error only when critical:
// the common "is this region already correct" probe is an expected
// non-faulty outcome. Read failures count as a mismatch.
func (u *Updater) verifyChecksum(addr, length uint32, expected string, critical bool) bool {
	sum, err := u.computeChecksum(addr, length)
	if err != nil {
		return false
	}
	ok := strings.EqualFold(sum, expected)
	ev := u.log.Debug()
	if !ok && critical {
		ev = u.log.Error()
	}
	ev.Uint32("len", length).Uint32("addr", addr).
		Str("sha1", sum).Str("want", expected).
		Msg("checksum")
	return ok
}
