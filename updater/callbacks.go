package updater

// WatchdogFunc feeds an external watchdog. Implementations must return
// quickly; it is called from inside flash scan loops.
type WatchdogFunc func()

// Progress reports how far the write of one file has come.
type Progress struct {
	// Name is the manifest name of the file being written.
	Name string

	// Written is the number of bytes written to flash so far.
	Written uint32

	// Size is the declared size of the file.
	Size uint32
}

// ProgressFunc is called after every accepted chunk of file data.
type ProgressFunc func(Progress)

// Filesystem is the external filesystem collaborator used by the
// post-boot merge. Mount registers and mounts the filesystem image at
// addr under mountPoint; Merge carries user files from oldRoot into
// newRoot.
type Filesystem interface {
	Mount(addr, size uint32, device, mountPoint string) error
	Merge(oldRoot, newRoot string) error
	Unmount(mountPoint string) error
	Unregister(device string) error
}
