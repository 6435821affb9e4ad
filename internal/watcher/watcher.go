// Package watcher reports changes to a set of configuration files.
package watcher

import (
	"context"
	"path/filepath"
	"time"

	"ficconf/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the bursts of events editors produce on save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher calls a function whenever one of its files is written, created,
// renamed or removed. Parent directories are watched rather than the files
// themselves so that atomic saves (write temp, rename over) are seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	onChange func(changed []string)
	debounce time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long to wait for further events before reporting.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// New watches files. onChange receives the changed files, sorted by first
// event, once events have been quiet for the debounce interval.
func New(files []string, onChange func(changed []string), opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		files:    make(map[string]bool),
		onChange: onChange,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run delivers change notifications until ctx is cancelled, then releases
// the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	log := logging.Component("watcher")

	var (
		pending []string
		seen    = make(map[string]bool)
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil || !w.files[name] {
				continue
			}
			log.Debug().Str("file", name).Str("op", ev.Op.String()).Msg("source changed")
			if !seen[name] {
				seen[name] = true
				pending = append(pending, name)
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			changed := pending
			pending, seen, fire = nil, make(map[string]bool), nil
			w.onChange(changed)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("watcher error")
		}
	}
}
