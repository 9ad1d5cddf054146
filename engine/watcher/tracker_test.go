package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInfo struct {
	name  string
	mtime time.Time
	dir   bool
}

func (f fakeInfo) Name() string       { return f.name }
func (f fakeInfo) Size() int64        { return 0 }
func (f fakeInfo) Mode() fs.FileMode  { return 0o644 }
func (f fakeInfo) ModTime() time.Time { return f.mtime }
func (f fakeInfo) IsDir() bool        { return f.dir }
func (f fakeInfo) Sys() any           { return nil }

// fakeFS is an in-memory modification-time table that counts stat calls.
type fakeFS struct {
	files map[string]fakeInfo
	stats int
}

func newFakeFS() *fakeFS {
	return &fakeFS{files: make(map[string]fakeInfo)}
}

func (f *fakeFS) touch(path string, sec int64) {
	f.files[path] = fakeInfo{name: path, mtime: time.Unix(sec, 0)}
}

func (f *fakeFS) stat(path string) (os.FileInfo, error) {
	f.stats++
	info, ok := f.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return info, nil
}

func TestPollFiresOnIncreaseOnly(t *testing.T) {
	fsys := newFakeFS()
	fsys.touch("a", 10)
	tr := NewTracker(WithStatFunc(fsys.stat))

	var calls []string
	require.NoError(t, tr.Watch("a", func(p string) { calls = append(calls, p) }))

	assert.Equal(t, 0, tr.Poll())
	fsys.touch("a", 10)
	assert.Equal(t, 0, tr.Poll())
	fsys.touch("a", 5)
	assert.Equal(t, 0, tr.Poll(), "older time is not a change")
	fsys.touch("a", 11)
	assert.Equal(t, 1, tr.Poll())
	assert.Equal(t, 0, tr.Poll(), "a change fires once")
	assert.Equal(t, []string{"a"}, calls)
}

func TestPollOrderAndAnyChange(t *testing.T) {
	fsys := newFakeFS()
	for _, p := range []string{"c", "a", "b"} {
		fsys.touch(p, 1)
	}
	tr := NewTracker(WithStatFunc(fsys.stat))

	var log []string
	for _, p := range []string{"c", "a", "b"} {
		require.NoError(t, tr.Watch(p, func(p string) { log = append(log, "path:"+p) }))
	}
	tok1 := tr.WatchAnyChange(func(p string) { log = append(log, "any1:"+p) })
	tr.WatchAnyChange(func(p string) { log = append(log, "any2:"+p) })

	fsys.touch("b", 2)
	fsys.touch("c", 2)
	tr.Poll()
	assert.Equal(t, []string{"path:c", "any1:c", "any2:c", "path:b", "any1:b", "any2:b"}, log)

	log = nil
	tr.UnwatchAnyChange(tok1)
	fsys.touch("a", 3)
	tr.Poll()
	assert.Equal(t, []string{"path:a", "any2:a"}, log)
	assert.Equal(t, []string{"c", "a", "b"}, tr.Paths())
}

func TestRewatchReplacesCallback(t *testing.T) {
	fsys := newFakeFS()
	fsys.touch("a", 1)
	tr := NewTracker(WithStatFunc(fsys.stat))

	first, second := 0, 0
	require.NoError(t, tr.Watch("a", func(string) { first++ }))
	require.NoError(t, tr.Watch("a", func(string) { second++ }))
	assert.Equal(t, []string{"a"}, tr.Paths())

	fsys.touch("a", 2)
	tr.Poll()
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestMissingPathReportedOnceThenAppears(t *testing.T) {
	fsys := newFakeFS()
	tr := NewTracker(WithStatFunc(fsys.stat))

	fired := 0
	err := tr.Watch("late", func(string) { fired++ })
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, []string{"late"}, tr.Paths())

	assert.Equal(t, 0, tr.Poll())
	assert.Equal(t, 0, tr.Poll())

	fsys.touch("late", 1)
	assert.Equal(t, 1, tr.Poll())
	assert.Equal(t, 1, fired)
}

func TestWatchDirectory(t *testing.T) {
	fsys := newFakeFS()
	fsys.files["dir"] = fakeInfo{name: "dir", dir: true}
	tr := NewTracker(WithStatFunc(fsys.stat))

	assert.ErrorIs(t, tr.Watch("dir", nil), ErrDirectory)
	assert.Empty(t, tr.Paths())
}

func TestUnwatch(t *testing.T) {
	fsys := newFakeFS()
	fsys.touch("a", 1)
	fsys.touch("b", 1)
	tr := NewTracker(WithStatFunc(fsys.stat))
	require.NoError(t, tr.Watch("a", nil))
	require.NoError(t, tr.Watch("b", nil))

	tr.Unwatch("a")
	tr.Unwatch("nope")
	assert.Equal(t, []string{"b"}, tr.Paths())

	anyFired := 0
	tr.WatchAnyChange(func(string) { anyFired++ })
	tr.UnwatchAll()
	assert.Empty(t, tr.Paths())

	fsys.touch("b", 2)
	assert.Equal(t, 0, tr.Poll())
	assert.Equal(t, 0, anyFired)
}

func TestCallbackMayUnwatchLaterPath(t *testing.T) {
	fsys := newFakeFS()
	fsys.touch("a", 1)
	fsys.touch("b", 1)
	tr := NewTracker(WithStatFunc(fsys.stat))

	bFired := false
	require.NoError(t, tr.Watch("a", func(string) { tr.Unwatch("b") }))
	require.NoError(t, tr.Watch("b", func(string) { bFired = true }))

	fsys.touch("a", 2)
	fsys.touch("b", 2)
	tr.Poll()
	assert.False(t, bFired)
}

func TestPollStatsOnly(t *testing.T) {
	fsys := newFakeFS()
	fsys.touch("a", 1)
	tr := NewTracker(WithStatFunc(fsys.stat))
	require.NoError(t, tr.Watch("a", nil))

	before := fsys.stats
	tr.Poll()
	tr.Poll()
	assert.Equal(t, before+2, fsys.stats)
}

func TestRealFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	base := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, base, base))

	q := NewEventQueue[int]()
	tr := NewTracker()
	require.NoError(t, tr.Watch(path, q.Notify(7)))
	assert.Equal(t, 0, tr.Poll())

	later := base.Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	assert.Equal(t, 1, tr.Poll())
	assert.Equal(t, []PathChanged[int]{{Path: path, Flag: 7}}, q.Drain())
	assert.Equal(t, 0, q.Len())
}
