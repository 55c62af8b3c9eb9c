package boot

import (
	"fmt"
	"os"

	"gopkg.in/ini.v1"
)

// FileStore persists the boot configuration as an ini file. It is meant
// for host-side use: CLI tooling and tests working against a flash image
// file rather than a live device.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the ini file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (Config, error) {
	f, err := ini.Load(s.path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	var c Config
	if err := f.Section("boot").MapTo(&c); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	for i := range c.Slots {
		if err := f.Section(fmt.Sprintf("slot%d", i)).MapTo(&c.Slots[i]); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}
	return c, nil
}

func (s *FileStore) Save(c Config) error {
	f := ini.Empty()
	if err := f.Section("boot").ReflectFrom(&c); err != nil {
		return err
	}
	for i := range c.Slots {
		if err := f.Section(fmt.Sprintf("slot%d", i)).ReflectFrom(&c.Slots[i]); err != nil {
			return err
		}
	}
	// Write-then-rename so a crash mid-save never truncates the config.
	tmp := s.path + ".tmp"
	if err := f.SaveTo(tmp); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
