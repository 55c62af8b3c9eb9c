// Package boot manages the persisted boot configuration of an A/B device:
// which slot is active, which slot to fall back to, and whether the active
// image has been committed as healthy.
//
// Config is the full persisted record; Store abstracts where it lives
// (a raw flash sector via FlashStore, or an ini file via FileStore for
// host-side work). Machine implements the commit/revert ratchet on top of
// a Store:
//
//	m := boot.NewMachine(store)
//	s, err := m.State()
//	err = m.Commit()   // after the new image proves healthy
//	err = m.Revert()   // or fall back once, permanently
//
// Commit is one-way: once a slot is committed, a later Revert is a no-op.
// Revert swaps the active slot and immediately commits the result, so a
// failed update gets exactly one fallback, never a silent retry.
package boot
