package updater

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/close2/ota-common/boot"
	"github.com/close2/ota-common/flash"
)

// Updater is the on-device firmware update engine. It writes update files
// into the inactive slot, verifies them, and pivots the boot config.
//
// At most one update session exists device-wide: Begin fails while a
// session is active, and Finalize or Abort ends it. All operations run
// synchronously on the caller's goroutine.
type Updater struct {
	dev    flash.Device
	store  boot.Store
	layout flash.Layout
	log    zerolog.Logger
	config Config

	session *session
}

// Action tells the orchestrator what to do with an update file.
type Action int

const (
	// ActionSkip means the file is not wanted: either it is not named by
	// the manifest, or its destination already carries the expected
	// content and the write can be resumed past it.
	ActionSkip Action = iota

	// ActionProcess means the file's data must be fed through FileData.
	ActionProcess
)

func (a Action) String() string {
	if a == ActionSkip {
		return "skip"
	}
	return "process"
}

// session is the per-update state. It lives from Begin to
// Finalize or Abort.
type session struct {
	slot slotInfo // target (inactive) slot

	boot             manifestPart
	fw               manifestPart
	fs               manifestPart
	updateBootloader bool

	// flash parameter bytes captured before the bootloader is
	// overwritten, restored after its checksum verifies
	flashParams [flash.FlashParamsSize]byte

	bootSize uint32
	fwSize   uint32
	fsSize   uint32

	// active file write, nil between files
	cur     *flash.WriteCursor
	curName string
	curCS   string
	curSize uint32
	curBoot bool

	// first failed flash write; once set the session only aborts
	err error
}

// New creates an Updater over the given flash device and boot config
// store.
//
// Example:
//
//	u := updater.New(dev, store,
//	    updater.WithWatchdog(wdt.Feed),
//	    updater.WithLogger(log),
//	)
func New(dev flash.Device, store boot.Store, opts ...Option) *Updater {
	if dev == nil {
		panic("flash device cannot be nil")
	}
	if store == nil {
		panic("boot config store cannot be nil")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Updater{
		dev:    dev,
		store:  store,
		layout: cfg.Layout,
		log:    cfg.Logger,
		config: cfg,
	}
}

// Begin validates the update manifest and opens the update session.
// The target is always the slot that is not currently active, so the
// booted image is never touched mid-update. If a bootloader update is
// requested, the flash parameter bytes are captured before anything is
// written.
func (u *Updater) Begin(manifestJSON []byte) error {
	if u.session != nil {
		return ErrUpdateInProgress
	}
	m, err := parseManifest(manifestJSON)
	if err != nil {
		return err
	}

	cfg, err := u.store.Load()
	if err != nil {
		return err
	}
	target := boot.OtherSlot(cfg.ActiveSlot)
	si := resolveSlot(u.layout, cfg, target)
	if si.fwAddr == 0 {
		return ErrPlatformUnsupported
	}

	s := &session{
		slot:             si,
		boot:             m.Boot,
		fw:               m.FW,
		fs:               m.FS,
		updateBootloader: m.Boot.Update,
	}

	if s.updateBootloader {
		// Bytes 2 and 3 encode flash mode/size parameters the new
		// bootloader image does not carry; they must be put back
		// verbatim once the image is verified.
		if _, err := u.dev.ReadAt(s.flashParams[:], int64(u.layout.FlashParamsAddr)); err != nil {
			return &FlashReadError{Addr: u.layout.FlashParamsAddr, Len: flash.FlashParamsSize, Err: err}
		}
		u.log.Info().
			Str("boot", s.boot.String()).
			Hex("flash_params", s.flashParams[2:4]).
			Msg("bootloader update requested")
	}

	u.log.Info().
		Int("slot", si.id).
		Str("fw", s.fw.String()).
		Str("fs", s.fs.String()).
		Msg("update started")

	u.session = s
	return nil
}

// FileBegin dispatches an update file by its manifest name and decides
// what to do with it. Files the manifest does not name are skipped; so are
// files whose destination already hashes to the expected digest, which
// makes an interrupted update safe to restart.
func (u *Updater) FileBegin(name string, size uint32) (Action, error) {
	s := u.session
	if s == nil {
		return ActionSkip, ErrNoSession
	}
	if s.err != nil {
		return ActionSkip, s.err
	}

	var (
		addr     uint32
		capacity uint32
		expected string
		isBoot   bool
	)
	switch {
	case s.updateBootloader && name == s.boot.Src:
		addr, capacity, expected = s.boot.Addr, u.layout.Boot.Capacity, s.boot.CS
		isBoot = true
		s.bootSize = size
	case name == s.fw.Src:
		addr, capacity, expected = s.slot.fwAddr, s.slot.fwCapacity, s.fw.CS
		s.fwSize = size
	case name == s.fs.Src:
		addr, capacity, expected = s.slot.fsAddr, s.slot.fsCapacity, s.fs.CS
		s.fsSize = size
	default:
		u.log.Debug().Str("name", name).Msg("not interesting")
		return ActionSkip, nil
	}

	if size > capacity {
		u.log.Error().Str("name", name).Uint32("size", size).
			Uint32("addr", addr).Uint32("max", capacity).
			Msg("image too big")
		return ActionSkip, &ImageTooBigError{Name: name, Size: size, Addr: addr, Capacity: capacity}
	}

	if u.verifyChecksum(addr, size, expected, false) {
		u.log.Info().Str("name", name).Uint32("size", size).Uint32("addr", addr).
			Msg("skip writing, digest matches")
		return ActionSkip, nil
	}

	u.log.Info().Str("name", name).Uint32("size", size).Uint32("addr", addr).
		Msg("start writing")
	s.cur = flash.OpenCursor(u.dev, addr, size)
	s.curName = name
	s.curCS = expected
	s.curSize = size
	s.curBoot = isBoot
	return ActionProcess, nil
}

// FileData writes file data through the current cursor in whole granules
// and returns the number of bytes consumed. The sub-granule remainder is
// left for the caller to resupply with the next call, or to pass to
// FileEnd as the tail. A failed write poisons the session: every further
// call fails with the same error until the session is aborted.
func (u *Updater) FileData(data []byte) (int, error) {
	s := u.session
	if s == nil {
		return 0, ErrNoSession
	}
	if s.err != nil {
		return 0, s.err
	}
	if s.cur == nil {
		return 0, ErrNoSession
	}
	n, err := s.cur.Write(data)
	if err != nil {
		s.err = &WriteError{Addr: s.cur.Addr(), Err: err}
		return 0, s.err
	}
	u.reportProgress(Progress{Name: s.curName, Written: s.cur.Written(), Size: s.curSize})
	return n, nil
}

// FileEnd flushes the tail of the current file and verifies the
// destination against the expected digest. len(tail) must be below the
// write granularity. For the bootloader file, the preserved flash
// parameter bytes are restored only after the checksum has verified.
func (u *Updater) FileEnd(tail []byte) error {
	s := u.session
	if s == nil {
		return ErrNoSession
	}
	if s.err != nil {
		return s.err
	}
	if s.cur == nil {
		return ErrNoSession
	}
	if len(tail) > 0 {
		if err := s.cur.Flush(tail); err != nil {
			s.err = &TailWriteError{Addr: s.cur.Addr(), Err: err}
			return s.err
		}
	}

	addr := s.cur.Addr()
	sum, err := u.computeChecksum(addr, s.curSize)
	if err != nil {
		return err
	}
	if !strings.EqualFold(sum, s.curCS) {
		u.log.Error().Str("name", s.curName).Uint32("addr", addr).
			Str("sha1", sum).Str("want", s.curCS).
			Msg("invalid checksum")
		return &ChecksumMismatchError{Name: s.curName, Addr: addr, Expected: s.curCS, Actual: sum}
	}
	u.log.Info().Str("name", s.curName).Msg("write finished, checksum ok")

	if s.curBoot {
		u.log.Info().Msg("restoring flash params")
		if _, err := u.dev.WriteAt(s.flashParams[:], int64(u.layout.FlashParamsAddr)); err != nil {
			s.err = &WriteError{Addr: u.layout.FlashParamsAddr, Err: err}
			return s.err
		}
	}

	s.cur = nil
	s.curName = ""
	s.curCS = ""
	s.curSize = 0
	s.curBoot = false
	return nil
}

// Finalize pivots the persisted boot config to the newly written slot:
// active and revert slots swap, the new image sizes are recorded, and the
// slot is marked uncommitted with a pending filesystem merge. The single
// Save call is the atomic pivot point; a failure leaves the old slot fully
// active. On success the session ends.
func (u *Updater) Finalize() error {
	s := u.session
	if s == nil {
		return ErrNoSession
	}
	if s.err != nil {
		return s.err
	}
	if s.fwSize == 0 {
		return &MissingPartError{Part: "fw"}
	}
	if s.fsSize == 0 {
		return &MissingPartError{Part: "fs"}
	}

	cfg, err := u.store.Load()
	if err != nil {
		return err
	}
	slot := s.slot.id
	cfg.RevertSlot = cfg.ActiveSlot
	cfg.ActiveSlot = slot
	cfg.Slots[slot] = boot.SlotConfig{
		FWAddr: s.slot.fwAddr,
		FWSize: s.fwSize,
		FSAddr: s.slot.fsAddr,
		FSSize: s.fsSize,
	}
	cfg.FirstBoot = true
	cfg.FWUpdated = true
	cfg.BootAttempts = 0
	cfg.MergeFS = true
	if err := u.store.Save(cfg); err != nil {
		return &boot.PersistError{Err: err}
	}

	u.log.Info().
		Int("active", cfg.ActiveSlot).
		Int("revert", cfg.RevertSlot).
		Uint32("fw_addr", cfg.Slots[slot].FWAddr).
		Uint32("fw_size", cfg.Slots[slot].FWSize).
		Uint32("fs_addr", cfg.Slots[slot].FSAddr).
		Uint32("fs_size", cfg.Slots[slot].FSSize).
		Msg("new boot config")

	u.session = nil
	return nil
}

// Abort discards the update session. The inactive slot may be left with a
// partial image; the active slot is untouched and remains bootable, and a
// future update attempt simply overwrites the leftovers.
func (u *Updater) Abort() {
	if u.session == nil {
		return
	}
	u.log.Info().Msg("update aborted")
	u.session = nil
}

func (u *Updater) feedWatchdog() {
	if u.config.Watchdog != nil {
		u.config.Watchdog()
	}
}

func (u *Updater) reportProgress(p Progress) {
	if u.config.Progress != nil {
		u.config.Progress(p)
	}
}
