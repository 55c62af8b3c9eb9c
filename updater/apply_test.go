package updater

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/close2/ota-common/boot"
)

// fakeFS records the merge collaborator calls.
type fakeFS struct {
	mounts    []string
	merges    []string
	unmounts  []string
	unregs    []string
	mountAddr uint32
	mountSize uint32
	mountErr  error
	mergeErr  error
}

func (f *fakeFS) Mount(addr, size uint32, device, mountPoint string) error {
	if f.mountErr != nil {
		return f.mountErr
	}
	f.mountAddr, f.mountSize = addr, size
	f.mounts = append(f.mounts, device+":"+mountPoint)
	return nil
}

func (f *fakeFS) Merge(oldRoot, newRoot string) error {
	if f.mergeErr != nil {
		return f.mergeErr
	}
	f.merges = append(f.merges, oldRoot+"->"+newRoot)
	return nil
}

func (f *fakeFS) Unmount(mountPoint string) error {
	f.unmounts = append(f.unmounts, mountPoint)
	return nil
}

func (f *fakeFS) Unregister(device string) error {
	f.unregs = append(f.unregs, device)
	return nil
}

func mergePendingConfig() boot.Config {
	cfg := boot.Config{ActiveSlot: 1, RevertSlot: 0, FWUpdated: true, MergeFS: true}
	cfg.Slots[0] = boot.SlotConfig{FSAddr: 0x1800, FSSize: 640}
	return cfg
}

func TestApplyUpdateMergesPreviousFS(t *testing.T) {
	r := newRig(t, mergePendingConfig())
	fs := &fakeFS{}

	require.NoError(t, r.u.ApplyUpdate(fs))
	assert.Equal(t, []string{"oldroot:/old"}, fs.mounts)
	assert.Equal(t, []string{"/old->/"}, fs.merges)
	assert.Equal(t, []string{"/old"}, fs.unmounts)
	assert.Equal(t, []string{"oldroot"}, fs.unregs)
	assert.Equal(t, uint32(0x1800), fs.mountAddr)
	assert.Equal(t, uint32(640), fs.mountSize)

	// flag cleared once the merge succeeded
	cfg, err := r.store.Load()
	require.NoError(t, err)
	assert.False(t, cfg.MergeFS)
}

func TestApplyUpdateNoopWithoutPendingMerge(t *testing.T) {
	cfg := mergePendingConfig()
	cfg.MergeFS = false
	r := newRig(t, cfg)
	fs := &fakeFS{}

	require.NoError(t, r.u.ApplyUpdate(fs))
	assert.Empty(t, fs.mounts)
	assert.Empty(t, fs.merges)
}

func TestApplyUpdateMergeFailureKeepsFlag(t *testing.T) {
	r := newRig(t, mergePendingConfig())
	fs := &fakeFS{mergeErr: errors.New("merge blew up")}

	err := r.u.ApplyUpdate(fs)
	require.Error(t, err)

	// old FS is still unmounted, and the merge stays pending
	assert.Equal(t, []string{"/old"}, fs.unmounts)
	cfg, cfgErr := r.store.Load()
	require.NoError(t, cfgErr)
	assert.True(t, cfg.MergeFS)
}

func TestApplyUpdateMountFailure(t *testing.T) {
	r := newRig(t, mergePendingConfig())
	fs := &fakeFS{mountErr: errors.New("bad image")}

	err := r.u.ApplyUpdate(fs)
	require.Error(t, err)
	assert.Empty(t, fs.merges)
	assert.Empty(t, fs.unmounts)
}
