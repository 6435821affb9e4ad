package artifact

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// WriteFile writes the snapshot to path on fs, creating parent directories.
func (s Settings) WriteFile(fs afero.Fs, path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := s.ToJSON()
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, path, data, 0644)
}

// ReadFile reads a snapshot written by WriteFile.
func ReadFile(fs afero.Fs, path string) (Settings, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Settings{}, err
	}
	s, err := FromJSON(data)
	if err != nil {
		return Settings{}, fmt.Errorf("invalid settings snapshot %s: %w", path, err)
	}
	return s, nil
}
