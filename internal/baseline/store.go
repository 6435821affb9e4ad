// Package baseline persists named settings snapshots.
package baseline

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// ErrBaselineNotFound is returned when a baseline doesn't exist.
var ErrBaselineNotFound = errors.New("baseline not found")

// DirEnv overrides the baseline directory.
const DirEnv = "FICCONF_BASELINE_DIR"

// Store keeps one JSON file per baseline in Dir.
type Store struct {
	fs  afero.Fs
	Dir string
}

// NewStore creates a store rooted at dir on fs.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, Dir: dir}
}

// DefaultDir returns the per-user baseline directory.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".ficconf", "baselines")
	}
	return filepath.Join(dir, "ficconf", "baselines")
}

// ResolveDir returns the baseline directory from environ, or the default.
func ResolveDir(environ []string) string {
	for _, env := range environ {
		if dir, ok := strings.CutPrefix(env, DirEnv+"="); ok && dir != "" {
			return dir
		}
	}
	return DefaultDir()
}

// Save stores b under its name, replacing any earlier baseline of that name.
func (s *Store) Save(b Baseline) error {
	if err := s.fs.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(s.fs, s.path(b.Name), data, 0644)
}

// Load retrieves a baseline by name.
func (s *Store) Load(name string) (Baseline, error) {
	data, err := afero.ReadFile(s.fs, s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return Baseline{}, ErrBaselineNotFound
		}
		return Baseline{}, err
	}

	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return Baseline{}, err
	}
	return b, nil
}

// List returns every readable baseline, sorted by name. Unreadable or
// invalid files are skipped.
func (s *Store) List() ([]Summary, error) {
	entries, err := afero.ReadDir(s.fs, s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Summary{}, nil
		}
		return nil, err
	}

	summaries := []Summary{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := afero.ReadFile(s.fs, filepath.Join(s.Dir, entry.Name()))
		if err != nil {
			continue
		}
		var b Baseline
		if err := json.Unmarshal(data, &b); err != nil {
			continue
		}
		summaries = append(summaries, Summary{
			Name:      b.Name,
			Version:   b.Settings.Version,
			Site:      b.Settings.Site,
			Format:    b.Settings.Format,
			Timestamp: b.Timestamp,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})
	return summaries, nil
}

// Delete removes a baseline by name.
func (s *Store) Delete(name string) error {
	err := s.fs.Remove(s.path(name))
	if err != nil && os.IsNotExist(err) {
		return ErrBaselineNotFound
	}
	return err
}

// Exists checks if a baseline exists.
func (s *Store) Exists(name string) bool {
	_, err := s.fs.Stat(s.path(name))
	return err == nil
}

func (s *Store) path(name string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	return filepath.Join(s.Dir, safe+".json")
}
