// Command otaflash drives the update engine against a flash image file.
// It is a host-side harness: the image plays the part of the device's
// flash, and an ini file plays the part of the boot config sector.
//
//	otaflash --image flash.bin --config boot.ini state
//	otaflash --image flash.bin --config boot.ini update ./package
//	otaflash --image flash.bin --config boot.ini snapshot
//	otaflash --image flash.bin --config boot.ini commit
//	otaflash --image flash.bin --config boot.ini revert
//
// The update command expects a directory holding manifest.json plus the
// files it names.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/close2/ota-common/boot"
	"github.com/close2/ota-common/flash"
	"github.com/close2/ota-common/updater"
)

var (
	imagePath  = kingpin.Flag("image", "flash image file").Required().String()
	configPath = kingpin.Flag("config", "boot config ini file").Required().String()
	layoutPath = kingpin.Flag("layout", "flash layout yaml, default geometry if unset").String()
	verbose    = kingpin.Flag("verbose", "debug logging").Short('v').Bool()

	stateCmd    = kingpin.Command("state", "print the boot state")
	commitCmd   = kingpin.Command("commit", "commit the active slot")
	revertCmd   = kingpin.Command("revert", "revert to the other slot")
	snapshotCmd = kingpin.Command("snapshot", "duplicate the active slot into the inactive one")

	updateCmd = kingpin.Command("update", "apply an unpacked update package")
	updateDir = updateCmd.Arg("dir", "package directory with manifest.json").Required().ExistingDir()
)

func main() {
	cmd := kingpin.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*verbose {
		log = log.Level(zerolog.InfoLevel)
	}

	if err := run(cmd, log); err != nil {
		log.Fatal().Err(err).Msg("otaflash failed")
	}
}

func run(cmd string, log zerolog.Logger) error {
	layout := flash.DefaultLayout()
	if *layoutPath != "" {
		data, err := os.ReadFile(*layoutPath)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, &layout); err != nil {
			return fmt.Errorf("parse layout %s: %w", *layoutPath, err)
		}
	}

	dev, err := os.OpenFile(*imagePath, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer dev.Close()

	store := boot.NewFileStore(*configPath)
	machine := boot.NewMachine(store, boot.WithLogger(log))
	u := updater.New(dev, store,
		updater.WithLogger(log),
		updater.WithLayout(layout),
	)

	switch cmd {
	case stateCmd.FullCommand():
		s, err := machine.State()
		if err != nil {
			return err
		}
		fmt.Printf("active=%d revert=%d committed=%v\n", s.ActiveSlot, s.RevertSlot, s.IsCommitted)
		return nil
	case commitCmd.FullCommand():
		return machine.Commit()
	case revertCmd.FullCommand():
		return machine.Revert()
	case snapshotCmd.FullCommand():
		slot, err := u.CreateSnapshot()
		if err != nil {
			return err
		}
		fmt.Printf("snapshot written to slot %d\n", slot)
		return nil
	case updateCmd.FullCommand():
		return applyPackage(u, *updateDir)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

// applyPackage feeds every file of an unpacked update package through one
// update session and finalizes it.
func applyPackage(u *updater.Updater, dir string) error {
	manifest, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return err
	}
	if err := u.Begin(manifest); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		u.Abort()
		return err
	}
	for _, e := range entries {
		if e.IsDir() || e.Name() == "manifest.json" {
			continue
		}
		if err := feedFile(u, filepath.Join(dir, e.Name()), e.Name()); err != nil {
			u.Abort()
			return err
		}
	}
	return u.Finalize()
}

func feedFile(u *updater.Updater, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	action, err := u.FileBegin(name, uint32(info.Size()))
	if err != nil {
		return err
	}
	if action == updater.ActionSkip {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, 4096)
	var pending []byte
	for {
		n, err := f.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			consumed, werr := u.FileData(pending)
			if werr != nil {
				return werr
			}
			pending = pending[consumed:]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}
	return u.FileEnd(pending)
}
