package updater

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	goodCS  = "da39a3ee5e6b4b0d3255bfef95601890afd80709"
	otherCS = "356a192b7913b04c54574d18c28d46e6395428ab"
)

func TestParseManifest(t *testing.T) {
	valid := `{
		"boot": {"src": "boot.bin", "addr": 0, "cs_sha1": "` + goodCS + `", "update": true},
		"fw": {"src": "fw.bin", "addr": 8192, "cs_sha1": "` + goodCS + `"},
		"fs": {"src": "fs.img", "addr": 925696, "cs_sha1": "` + otherCS + `"}
	}`

	m, err := parseManifest([]byte(valid))
	require.NoError(t, err)
	assert.Equal(t, "fw.bin", m.FW.Src)
	assert.Equal(t, uint32(8192), m.FW.Addr)
	assert.Equal(t, goodCS, m.FW.CS)
	assert.Equal(t, "fs.img", m.FS.Src)
	assert.Equal(t, otherCS, m.FS.CS)
	assert.True(t, m.Boot.Update)
	assert.Equal(t, "boot.bin", m.Boot.Src)
}

func TestParseManifestErrors(t *testing.T) {
	fw := `"fw": {"src": "fw.bin", "addr": 1, "cs_sha1": "` + goodCS + `"}`
	fs := `"fs": {"src": "fs.img", "addr": 2, "cs_sha1": "` + goodCS + `"}`

	tests := []struct {
		name     string
		manifest string
		want     error
	}{
		{"not json", `{fw: oops`, ErrManifestInvalid},
		{"missing fw", `{` + fs + `}`, ErrManifestInvalid},
		{"missing fs", `{` + fw + `}`, ErrManifestInvalid},
		{"fw not an object", `{"fw": 1, ` + fs + `}`, ErrManifestInvalid},
		{
			"fw src missing",
			`{"fw": {"addr": 1, "cs_sha1": "` + goodCS + `"}, ` + fs + `}`,
			ErrManifestIncomplete,
		},
		{
			"fs checksum missing",
			`{` + fw + `, "fs": {"src": "fs.img", "addr": 2}}`,
			ErrManifestIncomplete,
		},
		{
			"fs addr zero",
			`{` + fw + `, "fs": {"src": "fs.img", "addr": 0, "cs_sha1": "` + goodCS + `"}}`,
			ErrManifestIncomplete,
		},
		{
			"bootloader update without boot name",
			`{"boot": {"addr": 0, "cs_sha1": "` + goodCS + `", "update": true}, ` + fw + `, ` + fs + `}`,
			ErrManifestIncomplete,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseManifest([]byte(tt.manifest))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseManifestChecksumFormat(t *testing.T) {
	bad := []string{
		strings.Repeat("a", 39),
		strings.Repeat("a", 41),
		strings.Repeat("g", 40), // not hex
		"",
	}
	for _, cs := range bad {
		manifest := `{
			"fw": {"src": "fw.bin", "addr": 1, "cs_sha1": "` + cs + `"},
			"fs": {"src": "fs.img", "addr": 2, "cs_sha1": "` + goodCS + `"}
		}`
		_, err := parseManifest([]byte(manifest))
		if cs == "" {
			// an absent checksum is incompleteness, not a format error
			assert.ErrorIs(t, err, ErrManifestIncomplete)
			continue
		}
		var fmtErr *ChecksumFormatError
		require.True(t, errors.As(err, &fmtErr), "checksum %q", cs)
		assert.Equal(t, "fw", fmtErr.Part)
	}

	// uppercase hex is an accepted format
	manifest := `{
		"fw": {"src": "fw.bin", "addr": 1, "cs_sha1": "` + strings.ToUpper(goodCS) + `"},
		"fs": {"src": "fs.img", "addr": 2, "cs_sha1": "` + goodCS + `"}
	}`
	_, err := parseManifest([]byte(manifest))
	assert.NoError(t, err)
}
