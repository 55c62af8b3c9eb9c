package updater

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// checksum strings are lowercase hex SHA-1 digests
const (
	checksumLen    = 20
	checksumHexLen = checksumLen * 2
)

// manifestPart is one named file of an update package.
type manifestPart struct {
	Src    string
	Addr   uint32
	CS     string
	Update bool // boot only: whether a bootloader update is requested
}

// manifest is the validated file manifest of an update package.
type manifest struct {
	Boot manifestPart
	FW   manifestPart
	FS   manifestPart
}

func manifestSection(v gjson.Result) manifestPart {
	return manifestPart{
		Src:    v.Get("src").String(),
		Addr:   uint32(v.Get("addr").Uint()),
		CS:     v.Get("cs_sha1").String(),
		Update: v.Get("update").Bool(),
	}
}

// parseManifest validates the update package manifest:
// the top-level fw and fs objects must exist, their name, checksum and the
// fs address are required, and every checksum must be a 40 character hex
// digest. Boot fields are required only when a bootloader update is
// requested.
func parseManifest(data []byte) (*manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrManifestInvalid
	}
	fw := gjson.GetBytes(data, "fw")
	fs := gjson.GetBytes(data, "fs")
	if !fw.IsObject() || !fs.IsObject() {
		return nil, ErrManifestInvalid
	}

	m := &manifest{
		Boot: manifestSection(gjson.GetBytes(data, "boot")),
		FW:   manifestSection(fw),
		FS:   manifestSection(fs),
	}

	if m.FW.Src == "" || m.FW.CS == "" || m.FS.Src == "" || m.FS.CS == "" ||
		m.FS.Addr == 0 ||
		(m.Boot.Update && (m.Boot.Src == "" || m.Boot.CS == "")) {
		return nil, ErrManifestIncomplete
	}

	if err := checkChecksumFormat("fw", m.FW.CS); err != nil {
		return nil, err
	}
	if err := checkChecksumFormat("fs", m.FS.CS); err != nil {
		return nil, err
	}
	if m.Boot.Update {
		if err := checkChecksumFormat("boot", m.Boot.CS); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func checkChecksumFormat(part, cs string) error {
	if len(cs) != checksumHexLen {
		return &ChecksumFormatError{Part: part, Checksum: cs}
	}
	for i := 0; i < len(cs); i++ {
		if !isHexDigit(cs[i]) {
			return &ChecksumFormatError{Part: part, Checksum: cs}
		}
	}
	return nil
}

func isHexDigit(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'f':
		return true
	case c >= 'A' && c <= 'F':
		return true
	}
	return false
}

func (p manifestPart) String() string {
	return fmt.Sprintf("%s -> 0x%x", p.Src, p.Addr)
}
