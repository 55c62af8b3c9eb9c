package updater

import (
	"errors"
	"fmt"
)

var (
	// ErrManifestInvalid indicates a manifest that is not valid JSON or
	// is missing the top-level fw/fs objects.
	ErrManifestInvalid = errors.New("invalid manifest")

	// ErrManifestIncomplete indicates a manifest missing required fields.
	ErrManifestIncomplete = errors.New("incomplete update package")

	// ErrPlatformUnsupported indicates that no writable slot region
	// exists on this build.
	ErrPlatformUnsupported = errors.New("OTA is not supported in this build")

	// ErrUpdateInProgress indicates that a session already exists.
	// At most one update session exists device-wide.
	ErrUpdateInProgress = errors.New("update already in progress")

	// ErrNoSession indicates a file or finalize call without Begin.
	ErrNoSession = errors.New("no update session")
)

// ChecksumFormatError indicates a checksum string that is not a 40
// character hex SHA-1 digest.
type ChecksumFormatError struct {
	Part     string
	Checksum string
}

func (e *ChecksumFormatError) Error() string {
	return fmt.Sprintf("invalid checksum format for %s: %q", e.Part, e.Checksum)
}

// FlashReadError indicates a failed flash read.
type FlashReadError struct {
	Addr uint32
	Len  uint32
	Err  error
}

func (e *FlashReadError) Error() string {
	return fmt.Sprintf("failed to read %d bytes at 0x%x: %v", e.Len, e.Addr, e.Err)
}

func (e *FlashReadError) Unwrap() error { return e.Err }

// WriteError indicates a failed flash write. The session is unusable for
// further file data once a write has failed.
type WriteError struct {
	Addr uint32
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write failed at 0x%x: %v", e.Addr, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// TailWriteError indicates that flushing the final sub-granule bytes of a
// file failed.
type TailWriteError struct {
	Addr uint32
	Err  error
}

func (e *TailWriteError) Error() string {
	return fmt.Sprintf("tail write failed at 0x%x: %v", e.Addr, e.Err)
}

func (e *TailWriteError) Unwrap() error { return e.Err }

// ImageTooBigError indicates a file larger than its destination region.
type ImageTooBigError struct {
	Name     string
	Size     uint32
	Addr     uint32
	Capacity uint32
}

func (e *ImageTooBigError) Error() string {
	return fmt.Sprintf("cannot write %s (%d) @ 0x%x: max size %d",
		e.Name, e.Size, e.Addr, e.Capacity)
}

// ChecksumMismatchError indicates that a fully written file does not hash
// to its expected digest. This is fatal for the update; there is no retry.
type ChecksumMismatchError struct {
	Name     string
	Addr     uint32
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s @ 0x%x: got %s, want %s",
		e.Name, e.Addr, e.Actual, e.Expected)
}

// MissingPartError indicates finalizing an update that never received a
// required part.
type MissingPartError struct {
	Part string // "fw" or "fs"
}

func (e *MissingPartError) Error() string {
	return fmt.Sprintf("missing %s part", e.Part)
}

// CopyVerifyError indicates that a snapshot region copy failed. Region
// identifies whether the firmware or the filesystem copy is responsible.
type CopyVerifyError struct {
	Region string // "fw" or "fs"
	Err    error
}

func (e *CopyVerifyError) Error() string {
	return fmt.Sprintf("snapshot copy of %s region failed: %v", e.Region, e.Err)
}

func (e *CopyVerifyError) Unwrap() error { return e.Err }
