// Package watcher detects on-disk modification of individual files by polling their
// modification times. It never reads file contents.
package watcher

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrDirectory is returned when a directory is passed to Watch.
var ErrDirectory = errors.New("watcher: path is a directory")

// Callback is invoked with the path whose modification time increased.
type Callback func(path string)

// Token identifies an any-change callback registration.
type Token uint64

// StatFunc queries file metadata. os.Stat is the default.
type StatFunc func(path string) (os.FileInfo, error)

// entry is one watched path.
type entry struct {
	path     string
	mtime    time.Time
	known    bool
	reported bool
	callback Callback
}

// anyChange is one any-change registration.
type anyChange struct {
	token    Token
	callback Callback
}

// tracker is the implementation of the Tracker interface.
type tracker struct {
	mu        sync.Mutex
	stat      StatFunc
	log       *zap.Logger
	order     []string
	entries   map[string]*entry
	any       []anyChange
	nextToken Token
}

// Tracker polls a set of files and reports modification-time increases.
//
// Poll is synchronous. Callbacks run on the polling goroutine, outside the tracker's
// lock, so they may register or unregister paths; changes take effect on the next Poll.
type Tracker interface {
	// Watch records the current modification time of path and registers onChanged for it.
	// Watching an already watched path replaces its callback and refreshes its time.
	// A missing or unreadable path is still registered with an unknown time, its first
	// appearance counts as a change, and the stat error is returned once.
	//
	// Parameters:
	//   - path: the file to watch
	//   - onChanged: the callback for this path, may be nil
	//
	// Returns:
	//   - error: ErrDirectory for directories, or the stat error for unreadable paths
	Watch(path string, onChanged Callback) error

	// Unwatch removes path. Unknown paths are ignored.
	//
	// Parameters:
	//   - path: the file to stop watching
	Unwatch(path string)

	// UnwatchAll removes every path. Any-change callbacks stay registered.
	UnwatchAll()

	// WatchAnyChange registers a callback invoked after the per-path callback of every
	// changed path.
	//
	// Parameters:
	//   - onChanged: the callback
	//
	// Returns:
	//   - Token: the handle for UnwatchAnyChange
	WatchAnyChange(onChanged Callback) Token

	// UnwatchAnyChange removes an any-change callback. Unknown tokens are ignored.
	//
	// Parameters:
	//   - token: the handle returned by WatchAnyChange
	UnwatchAnyChange(token Token)

	// Poll stats every watched path in registration order and fires callbacks for those
	// whose modification time increased.
	//
	// Returns:
	//   - int: the number of changed paths
	Poll() int

	// Paths lists the watched paths in registration order.
	//
	// Returns:
	//   - []string: a copy of the watched paths
	Paths() []string
}

var _ Tracker = &tracker{}

// NewTracker creates a Tracker with the given options applied.
//
// Parameters:
//   - options: a variadic list of TrackerBuilderOption functions
//
// Returns:
//   - Tracker: the new tracker
func NewTracker(options ...TrackerBuilderOption) Tracker {
	t := &tracker{
		stat:    os.Stat,
		log:     zap.NewNop(),
		entries: make(map[string]*entry),
	}
	for _, option := range options {
		option(t)
	}
	return t
}

func (t *tracker) Watch(path string, onChanged Callback) error {
	info, statErr := t.stat(path)
	if statErr == nil && info.IsDir() {
		return fmt.Errorf("%w: %s", ErrDirectory, path)
	}

	t.mu.Lock()
	e, ok := t.entries[path]
	if !ok {
		e = &entry{path: path}
		t.entries[path] = e
		t.order = append(t.order, path)
	}
	e.callback = onChanged
	if statErr != nil {
		e.known = false
		e.reported = true
	} else {
		e.mtime = info.ModTime()
		e.known = true
		e.reported = false
	}
	t.mu.Unlock()

	if statErr != nil {
		t.log.Warn("cannot stat watched file", zap.String("path", path), zap.Error(statErr))
		return fmt.Errorf("watcher: stat %s: %w", path, statErr)
	}
	return nil
}

func (t *tracker) Unwatch(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[path]; !ok {
		return
	}
	delete(t.entries, path)
	for i, p := range t.order {
		if p == path {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

func (t *tracker) UnwatchAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]*entry)
	t.order = nil
}

func (t *tracker) WatchAnyChange(onChanged Callback) Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextToken++
	t.any = append(t.any, anyChange{token: t.nextToken, callback: onChanged})
	return t.nextToken
}

func (t *tracker) UnwatchAnyChange(token Token) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, a := range t.any {
		if a.token == token {
			t.any = append(t.any[:i], t.any[i+1:]...)
			return
		}
	}
}

func (t *tracker) Poll() int {
	t.mu.Lock()
	order := append([]string(nil), t.order...)
	t.mu.Unlock()

	changed := 0
	for _, path := range order {
		info, err := t.stat(path)

		t.mu.Lock()
		e, ok := t.entries[path]
		if !ok {
			// Unwatched by an earlier callback in this poll.
			t.mu.Unlock()
			continue
		}
		if err != nil || info.IsDir() {
			first := !e.reported
			e.reported = true
			t.mu.Unlock()
			if first {
				if err == nil {
					err = ErrDirectory
				}
				t.log.Warn("cannot stat watched file", zap.String("path", path), zap.Error(err))
			}
			continue
		}
		mtime := info.ModTime()
		if e.known && !mtime.After(e.mtime) {
			e.reported = false
			t.mu.Unlock()
			continue
		}
		e.mtime = mtime
		e.known = true
		e.reported = false
		callback := e.callback
		anyCallbacks := append([]anyChange(nil), t.any...)
		t.mu.Unlock()

		changed++
		t.log.Debug("file changed", zap.String("path", path), zap.Time("mtime", mtime))
		if callback != nil {
			callback(path)
		}
		for _, a := range anyCallbacks {
			if a.callback != nil {
				a.callback(path)
			}
		}
	}
	return changed
}

func (t *tracker) Paths() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.order...)
}
