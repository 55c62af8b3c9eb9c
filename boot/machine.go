package boot

import (
	"github.com/rs/zerolog"
)

// State is the externally visible boot state triple.
type State struct {
	ActiveSlot  int
	RevertSlot  int
	IsCommitted bool
}

// Machine implements the commit/revert ratchet over a Store. Every
// transition is read-modify-persist: the caller must hold exclusive access
// to the store for the duration of a call.
type Machine struct {
	store Store
	log   zerolog.Logger
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithLogger sets the logger used for state transitions.
func WithLogger(log zerolog.Logger) MachineOption {
	return func(m *Machine) {
		m.log = log
	}
}

// NewMachine returns a Machine over the given store.
func NewMachine(store Store, opts ...MachineOption) *Machine {
	m := &Machine{store: store, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State reads the current boot state.
func (m *Machine) State() (State, error) {
	c, err := m.store.Load()
	if err != nil {
		return State{}, err
	}
	m.log.Debug().
		Int("active", c.ActiveSlot).
		Int("revert", c.RevertSlot).
		Bool("fw_updated", c.FWUpdated).
		Msg("boot state")
	return State{
		ActiveSlot:  c.ActiveSlot,
		RevertSlot:  c.RevertSlot,
		IsCommitted: c.IsCommitted(),
	}, nil
}

// SetState persists a new boot state. An uncommitted state marks the next
// boot as a first boot of a fresh image; the boot attempt counter and any
// pending post-boot actions are reset either way.
func (m *Machine) SetState(s State) error {
	if !ValidSlot(s.ActiveSlot) {
		return &InvalidSlotError{Slot: s.ActiveSlot}
	}
	if !ValidSlot(s.RevertSlot) {
		return &InvalidSlotError{Slot: s.RevertSlot}
	}
	c, err := m.store.Load()
	if err != nil {
		return err
	}
	c.ActiveSlot = s.ActiveSlot
	c.RevertSlot = s.RevertSlot
	c.FWUpdated = !s.IsCommitted
	c.FirstBoot = !s.IsCommitted
	c.BootAttempts = 0
	c.MergeFS = false
	m.log.Info().
		Int("active", c.ActiveSlot).
		Int("revert", c.RevertSlot).
		Bool("fw_updated", c.FWUpdated).
		Msg("set boot state")
	if err := m.store.Save(c); err != nil {
		return &PersistError{Err: err}
	}
	return nil
}

// Commit marks the active slot as confirmed healthy. Committing an
// already committed state is a no-op.
func (m *Machine) Commit() error {
	s, err := m.State()
	if err != nil {
		return err
	}
	if s.IsCommitted {
		return nil
	}
	m.log.Info().Int("slot", s.ActiveSlot).Msg("committing slot")
	s.IsCommitted = true
	return m.SetState(s)
}

// Revert falls back to the other slot and immediately commits the result,
// so a failed update is never retried. Once a state is committed, Revert
// is a no-op: commit is a one-way ratchet.
func (m *Machine) Revert() error {
	s, err := m.State()
	if err != nil {
		return err
	}
	if s.IsCommitted {
		return nil
	}
	s.ActiveSlot = OtherSlot(s.ActiveSlot)
	m.log.Info().Int("slot", s.ActiveSlot).Msg("update failed, reverting")
	s.IsCommitted = true
	return m.SetState(s)
}

// IsFirstBoot reports whether the active image has not booted before.
func (m *Machine) IsFirstBoot() (bool, error) {
	c, err := m.store.Load()
	if err != nil {
		return false, err
	}
	return c.FirstBoot, nil
}
