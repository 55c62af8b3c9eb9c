// Package updater implements the device-side engine of an A/B firmware
// update: writing manifest-named files into the inactive flash slot,
// verifying them by SHA-1 digest, and atomically pivoting the persisted
// boot configuration to the new slot.
//
// # Update flow
//
// An external orchestrator unpacks the update package and drives one
// session:
//
//	u := updater.New(dev, store, updater.WithWatchdog(wdt.Feed))
//
//	if err := u.Begin(manifestJSON); err != nil { ... }
//	for each file in the package {
//	    action, err := u.FileBegin(name, size)
//	    if action == updater.ActionProcess {
//	        // feed data in arbitrary chunks; FileData consumes whole
//	        // write granules and returns how much it took
//	        n, err := u.FileData(chunk)
//	        ...
//	        err = u.FileEnd(tail) // remaining sub-granule bytes
//	    }
//	}
//	err := u.Finalize()
//
// Finalize is the single atomic pivot: before it the old slot is fully
// active, after it the device boots the new slot uncommitted. Once the
// new image proves healthy the application calls boot.Machine.Commit;
// otherwise the recovery path calls Revert and the device falls back to
// the previous slot, permanently.
//
// # Resumability
//
// FileBegin hashes the destination region first and skips files whose
// expected digest is already in place, so an interrupted update can be
// restarted from the top at the cost of a flash scan, not a rewrite.
//
// # Snapshots
//
// CreateSnapshot duplicates the active slot into the inactive one with
// the same checksum-or-copy logic, without touching the active/revert
// assignment. It needs no session.
//
// # Liveness
//
// Checksum scans and snapshot copies call the configured watchdog
// callback at fixed byte intervals. Everything runs synchronously on the
// caller's goroutine; there is no cancellation mid-session beyond the
// caller ceasing to supply data and calling Abort.
package updater
