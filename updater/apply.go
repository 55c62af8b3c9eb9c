package updater

import (
	"fmt"
)

// Mount names used while merging the previous filesystem.
const (
	oldFSDevice = "oldroot"
	oldFSRoot   = "/old"
	newFSRoot   = "/"
)

// ApplyUpdate performs the pending post-boot work of a finished update:
// when a filesystem merge is requested, the previous slot's filesystem is
// mounted and its user files carried over into the new root, and the
// request flag is cleared only once the merge succeeded.
//
// Nothing happens unless the merge-pending flag is set.
func (u *Updater) ApplyUpdate(fs Filesystem) error {
	cfg, err := u.store.Load()
	if err != nil {
		return err
	}
	if !cfg.MergeFS {
		return nil
	}

	old := cfg.Slots[cfg.RevertSlot]
	u.log.Info().Uint32("size", old.FSSize).Uint32("addr", old.FSAddr).
		Msg("mounting old FS")
	if err := fs.Mount(old.FSAddr, old.FSSize, oldFSDevice, oldFSRoot); err != nil {
		u.log.Error().Err(err).Msg("update failed: cannot mount previous file system")
		return fmt.Errorf("mount previous file system: %w", err)
	}

	mergeErr := fs.Merge(oldFSRoot, newFSRoot)

	if err := fs.Unmount(oldFSRoot); err != nil {
		u.log.Error().Err(err).Msg("unmount old FS")
	}
	if err := fs.Unregister(oldFSDevice); err != nil {
		u.log.Error().Err(err).Msg("unregister old FS device")
	}

	if mergeErr != nil {
		return fmt.Errorf("merge file system: %w", mergeErr)
	}

	cfg.MergeFS = false
	if err := u.store.Save(cfg); err != nil {
		return err
	}
	return nil
}
