package boot

// NumSlots is the number of firmware slots in the A/B scheme.
const NumSlots = 2

// SlotConfig is the persisted location and size of one slot's images.
// Addresses are recorded here so the bootloader can find the images
// without knowledge of the flash layout.
type SlotConfig struct {
	FWAddr uint32 `ini:"fw_addr"`
	FWSize uint32 `ini:"fw_size"`
	FSAddr uint32 `ini:"fs_addr"`
	FSSize uint32 `ini:"fs_size"`
}

// Config is the persisted boot configuration, shared with the bootloader.
// Pending post-boot actions are explicit booleans rather than a flag word
// so each can be tested independently.
type Config struct {
	ActiveSlot int `ini:"active_slot"`
	RevertSlot int `ini:"revert_slot"`

	// FirstBoot is set when the device has not yet booted the image in
	// the active slot.
	FirstBoot bool `ini:"first_boot"`

	// FWUpdated is set while a newly written image has not yet proven
	// healthy. It is the inverse of "committed".
	FWUpdated bool `ini:"fw_updated"`

	// BootAttempts counts boots of an uncommitted image.
	BootAttempts int `ini:"boot_attempts"`

	// MergeFS requests a filesystem merge from the previous slot on the
	// next boot.
	MergeFS bool `ini:"merge_fs"`

	Slots [NumSlots]SlotConfig `ini:"-"`
}

// IsCommitted reports whether the active image has been confirmed healthy.
func (c Config) IsCommitted() bool { return !c.FWUpdated }

// ValidSlot reports whether id names one of the two slots.
func ValidSlot(id int) bool { return id == 0 || id == 1 }

// OtherSlot returns the slot id that is not id.
func OtherSlot(id int) int {
	if id == 0 {
		return 1
	}
	return 0
}
