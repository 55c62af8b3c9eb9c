package boot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/close2/ota-common/flash"
)

func testConfig() Config {
	return Config{
		ActiveSlot:   1,
		RevertSlot:   0,
		FirstBoot:    true,
		FWUpdated:    true,
		BootAttempts: 2,
		MergeFS:      true,
		Slots: [NumSlots]SlotConfig{
			{FWAddr: 0x2000, FWSize: 1234, FSAddr: 0xE2000, FSSize: 555},
			{FWAddr: 0x102000, FWSize: 777, FSAddr: 0x1E2000, FSSize: 888},
		},
	}
}

func TestFlashStoreRoundTrip(t *testing.T) {
	dev := flash.NewMemDevice(0x2000)
	st := NewFlashStore(dev, 0x1000)

	want := testConfig()
	require.NoError(t, st.Save(want))
	got, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFlashStoreErasedSector(t *testing.T) {
	dev := flash.NewMemDevice(0x2000)
	st := NewFlashStore(dev, 0x1000)
	_, err := st.Load()
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestFlashStoreCorruptRecord(t *testing.T) {
	dev := flash.NewMemDevice(0x2000)
	st := NewFlashStore(dev, 0x1000)
	require.NoError(t, st.Save(testConfig()))

	// flip a bit inside the record body
	dev.Bytes()[0x1008] ^= 0x01
	_, err := st.Load()
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boot.ini")
	st := NewFileStore(path)

	want := testConfig()
	require.NoError(t, st.Save(want))
	got, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStoreMissingFile(t *testing.T) {
	st := NewFileStore(filepath.Join(t.TempDir(), "nope.ini"))
	_, err := st.Load()
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
