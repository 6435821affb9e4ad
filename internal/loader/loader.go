// Package loader finds configuration sources and parses them, in order, into
// one section table.
package loader

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"ficconf/internal/ini"
	"ficconf/internal/logging"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// AppName names the per-user configuration directory.
const AppName = "ficconf"

// Result is the outcome of a load: the merged table and the sources that were
// actually read, in read order.
type Result struct {
	Table *ini.Table
	Read  []string
}

// Loader reads sources from a file system.
type Loader struct {
	fs afero.Fs
}

// New returns a loader over fs.
func New(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// DefaultPaths returns the candidate sources used when none are given: the
// per-user defaults and personal files, then the same names in the working
// directory. Later sources override earlier ones. XDG_CONFIG_HOME is read from
// environ.
func DefaultPaths(environ []string) []string {
	var paths []string
	if dir := userConfigDir(environ); dir != "" {
		paths = append(paths,
			filepath.Join(dir, AppName, "defaults.ini"),
			filepath.Join(dir, AppName, "personal.ini"),
		)
	}
	return append(paths, "defaults.ini", "personal.ini")
}

func userConfigDir(environ []string) string {
	for _, env := range environ {
		if xdg, ok := strings.CutPrefix(env, "XDG_CONFIG_HOME="); ok && xdg != "" {
			return xdg
		}
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return dir
}

// Load expands every pattern, then parses the matching sources in order into
// a fresh table. Sources that do not exist or cannot be opened are skipped.
// Malformed lines do not stop the load: each bad source contributes one
// *ini.ParseError and all of them are returned joined, alongside the table.
func (l *Loader) Load(patterns []string) (*Result, error) {
	return l.LoadInto(ini.NewTable(), patterns)
}

// LoadInto is Load into an existing table.
func (l *Loader) LoadInto(t *ini.Table, patterns []string) (*Result, error) {
	log := logging.Component("loader")
	res := &Result{Table: t}
	seen := make(map[string]bool)
	var errs []error

	for _, pattern := range patterns {
		for _, src := range l.expand(pattern) {
			key := filepath.Clean(src)
			if seen[key] {
				continue
			}
			seen[key] = true

			f, err := l.fs.Open(src)
			if err != nil {
				log.Debug().Str("source", src).Err(err).Msg("source unavailable, skipped")
				continue
			}
			err = ini.Parse(t, src, f)
			f.Close()
			res.Read = append(res.Read, src)
			if err != nil {
				log.Warn().Str("source", src).Msg("source has malformed lines")
				errs = append(errs, err)
				continue
			}
			log.Info().Str("source", src).Msg("source loaded")
		}
	}
	return res, errors.Join(errs...)
}

// expand returns the sources a pattern names. Patterns without glob meta
// characters are returned as is, whether or not they exist.
func (l *Loader) expand(pattern string) []string {
	if !hasMeta(pattern) {
		return []string{pattern}
	}

	abs := pattern
	if !filepath.IsAbs(abs) {
		var err error
		if abs, err = filepath.Abs(abs); err != nil {
			return nil
		}
	}
	base, rest := doublestar.SplitPattern(filepath.ToSlash(abs))
	fsys := afero.NewIOFS(afero.NewBasePathFs(l.fs, filepath.FromSlash(base)))
	matches, err := doublestar.Glob(fsys, rest, doublestar.WithFilesOnly())
	if err != nil || len(matches) == 0 {
		log := logging.Component("loader")
		log.Debug().Str("pattern", pattern).Msg("pattern matched no sources")
		return nil
	}
	sort.Strings(matches)

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = filepath.FromSlash(path.Join(base, m))
	}
	return out
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
