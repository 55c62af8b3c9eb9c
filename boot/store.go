package boot

// Store is the persisted home of the boot configuration. Every state
// transition loads the current config, modifies it in memory, and saves a
// fully updated copy in a single call; implementations must make Save
// atomic with respect to what the bootloader will read after a reset.
//
// A Load failure wraps ErrStoreUnavailable.
type Store interface {
	Load() (Config, error)
	Save(Config) error
}
