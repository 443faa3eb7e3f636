package scanner

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/reap/pkg/reap/config"
	"github.com/jamesainslie/reap/pkg/reap/search"
	"github.com/jamesainslie/reap/pkg/reap/types"
)

const target = "diff_result.html"

// createFile writes a small file, creating parent directories.
func createFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
}

func buildSnapshot(t *testing.T, dirs []string, targets ...string) *config.Snapshot {
	t.Helper()
	b := config.NewBuilder()
	if len(targets) > 0 {
		require.NoError(t, b.SetTargets(targets))
	}
	_, err := b.SetDirs(dirs)
	require.NoError(t, err)
	b.SetSearchRoot(dirs[0])
	snap, err := b.Build()
	require.NoError(t, err)
	return snap
}

func TestScanTree_DeletesTargets(t *testing.T) {
	root := t.TempDir()
	targets := []string{
		filepath.Join(root, target),
		filepath.Join(root, "a", target),
		filepath.Join(root, "a", "b", "c", target),
	}
	keep := []string{
		filepath.Join(root, "a", "other.html"),
		filepath.Join(root, "a", "diff_result.html.orig"),
		filepath.Join(root, "DIFF_RESULT.HTML"),
	}
	for _, p := range append(targets, keep...) {
		createFile(t, p)
	}

	snap := buildSnapshot(t, []string{root})
	got := ScanTree(context.Background(), root, snap, NewOptions(WithWorkers(2)))

	assert.Equal(t, types.ScanCounters{Deleted: 3}, got)
	for _, p := range targets {
		assert.NoFileExists(t, p)
	}
	for _, p := range keep {
		assert.FileExists(t, p, "non-target must be untouched")
	}
}

func TestScanTree_MultipleTargets(t *testing.T) {
	root := t.TempDir()
	createFile(t, filepath.Join(root, "x", "a.log"))
	createFile(t, filepath.Join(root, "y", "b.tmp"))
	createFile(t, filepath.Join(root, "y", target))

	snap := buildSnapshot(t, []string{root}, "a.log", "b.tmp")
	got := ScanTree(context.Background(), root, snap, Options{})

	assert.Equal(t, 2, got.Deleted)
	assert.FileExists(t, filepath.Join(root, "y", target))
}

func TestScanTree_DirectoriesAndSymlinksUntouched(t *testing.T) {
	root := t.TempDir()
	dirNamedTarget := filepath.Join(root, target)
	require.NoError(t, os.Mkdir(dirNamedTarget, 0o755))
	createFile(t, filepath.Join(dirNamedTarget, "inner.txt"))

	outside := filepath.Join(t.TempDir(), "real.html")
	createFile(t, outside)
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "sub", target)))

	got := ScanTree(context.Background(), root, buildSnapshot(t, []string{root}), Options{})

	assert.Zero(t, got.Deleted)
	assert.DirExists(t, dirNamedTarget)
	assert.FileExists(t, outside)
}

// Symlinked directories are never entered, so a link back to an ancestor
// cannot loop the walk. Physical revisits are covered by the bind mount
// test.
func TestScanTree_SymlinkLoopNotFollowed(t *testing.T) {
	root := t.TempDir()
	createFile(t, filepath.Join(root, "a", target))
	require.NoError(t, os.Symlink(root, filepath.Join(root, "a", "loop")))
	require.NoError(t, os.Symlink(filepath.Join(root, "a"), filepath.Join(root, "a", "self")))

	done := make(chan types.ScanCounters, 1)
	go func() {
		done <- ScanTree(context.Background(), root, buildSnapshot(t, []string{root}), Options{})
	}()

	select {
	case got := <-done:
		assert.Equal(t, 1, got.Deleted)
	case <-time.After(10 * time.Second):
		t.Fatal("scan did not terminate on a directory cycle")
	}
}

func TestScanTree_PartialFailureIsolation(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	createFile(t, filepath.Join(locked, target))
	createFile(t, filepath.Join(root, "open1", target))
	createFile(t, filepath.Join(root, "open2", "deep", target))
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	got := ScanTree(context.Background(), root, buildSnapshot(t, []string{root}), Options{})

	assert.Equal(t, 2, got.Deleted, "siblings of an unreadable directory are still scanned")
	assert.NoFileExists(t, filepath.Join(root, "open1", target))
	assert.NoFileExists(t, filepath.Join(root, "open2", "deep", target))
}

func TestScanTree_DeleteFailureCounted(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	root := t.TempDir()
	readonly := filepath.Join(root, "readonly")
	createFile(t, filepath.Join(readonly, target))
	createFile(t, filepath.Join(root, "writable", target))
	require.NoError(t, os.Chmod(readonly, 0o555))
	t.Cleanup(func() { _ = os.Chmod(readonly, 0o755) })

	got := ScanTree(context.Background(), root, buildSnapshot(t, []string{root}), Options{})

	assert.Equal(t, types.ScanCounters{Deleted: 1, Failed: 1}, got)
	assert.FileExists(t, filepath.Join(readonly, target))
}

func TestScanTree_MissingRoot(t *testing.T) {
	dir := t.TempDir()
	snap := buildSnapshot(t, []string{dir})

	got := ScanTree(context.Background(), filepath.Join(dir, "gone"), snap, Options{})
	assert.Equal(t, types.ScanCounters{}, got)
}

func TestScanTree_Canceled(t *testing.T) {
	root := t.TempDir()
	createFile(t, filepath.Join(root, "a", target))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := ScanTree(ctx, root, buildSnapshot(t, []string{root}), Options{})
	assert.Zero(t, got.Deleted)
	assert.FileExists(t, filepath.Join(root, "a", target))
}

func TestScanTrees(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	createFile(t, filepath.Join(first, target))
	createFile(t, filepath.Join(second, "x", target))

	snap := buildSnapshot(t, []string{first, second})
	got := ScanTrees(context.Background(), snap, Options{})

	assert.Equal(t, 2, got.Deleted)
}

// fakeSearch returns canned results per name and records calls.
type fakeSearch struct {
	results map[string][]string
	failOn  string
	calls   []string
}

func (f *fakeSearch) Name() string { return "fake" }

func (f *fakeSearch) Search(_ context.Context, name, _ string) ([]string, error) {
	f.calls = append(f.calls, name)
	if name == f.failOn {
		return nil, errors.Join(search.ErrFacility, errors.New("find: command not found"))
	}
	return f.results[name], nil
}

func TestGlobalScan_DeletesReturnedPaths(t *testing.T) {
	home := t.TempDir()
	a := filepath.Join(home, "p", "a.log")
	b := filepath.Join(home, "q", "b.tmp")
	createFile(t, a)
	createFile(t, b)
	unrelated := filepath.Join(home, "keep.txt")
	createFile(t, unrelated)

	fake := &fakeSearch{results: map[string][]string{
		"a.log": {a, filepath.Join(home, "vanished", "a.log")},
		"b.tmp": {b},
	}}
	snap := buildSnapshot(t, []string{home}, "a.log", "b.tmp")

	got := GlobalScan(context.Background(), snap, NewOptions(WithSearch(fake)))

	assert.Equal(t, types.ScanCounters{Deleted: 2}, got, "vanished paths are skipped silently")
	assert.Equal(t, []string{"a.log", "b.tmp"}, fake.calls, "targets searched in configured order")
	assert.NoFileExists(t, a)
	assert.NoFileExists(t, b)
	assert.FileExists(t, unrelated)
}

func TestGlobalScan_FacilityErrorEndsCycle(t *testing.T) {
	home := t.TempDir()
	c := filepath.Join(home, "c.out")
	createFile(t, c)

	fake := &fakeSearch{
		failOn:  "b.tmp",
		results: map[string][]string{"c.out": {c}},
	}
	snap := buildSnapshot(t, []string{home}, "a.log", "b.tmp", "c.out")

	got := GlobalScan(context.Background(), snap, NewOptions(WithSearch(fake)))

	assert.Equal(t, types.ScanCounters{}, got)
	assert.Equal(t, []string{"a.log", "b.tmp"}, fake.calls)
	assert.FileExists(t, c, "names after a facility failure are not searched")

	// The next cycle proceeds normally.
	fake.failOn = ""
	fake.calls = nil
	got = GlobalScan(context.Background(), snap, NewOptions(WithSearch(fake)))
	assert.Equal(t, 1, got.Deleted)
}

func TestGlobalScan_SkipsBaseNameMismatch(t *testing.T) {
	home := t.TempDir()
	exact := filepath.Join(home, "*.tmp")
	notes := filepath.Join(home, "notes.tmp")
	createFile(t, exact)
	createFile(t, notes)

	fake := &fakeSearch{results: map[string][]string{"*.tmp": {notes, exact}}}
	snap := buildSnapshot(t, []string{home}, "*.tmp")

	got := GlobalScan(context.Background(), snap, NewOptions(WithSearch(fake)))

	assert.Equal(t, types.ScanCounters{Deleted: 1}, got)
	assert.NoFileExists(t, exact)
	assert.FileExists(t, notes, "only exact base names are deleted")
}

func TestGlobalScan_FindPatternTarget(t *testing.T) {
	if _, err := exec.LookPath("find"); err != nil {
		t.Skip("find not available")
	}

	home := t.TempDir()
	notes := filepath.Join(home, "notes.tmp")
	deep := filepath.Join(home, "a", "b", "cache.tmp")
	createFile(t, notes)
	createFile(t, deep)

	snap := buildSnapshot(t, []string{home}, "*.tmp")
	got := GlobalScan(context.Background(), snap, NewOptions(WithSearch(search.NewFind())))

	assert.Zero(t, got.Deleted)
	assert.FileExists(t, notes)
	assert.FileExists(t, deep)
}

func TestGlobalScan_WalkBackend(t *testing.T) {
	home := t.TempDir()
	createFile(t, filepath.Join(home, "deep", "er", target))
	createFile(t, filepath.Join(home, "deep", "other.html"))

	snap := buildSnapshot(t, []string{home})
	got := GlobalScan(context.Background(), snap, Options{})

	assert.Equal(t, 1, got.Deleted)
	assert.FileExists(t, filepath.Join(home, "deep", "other.html"))
}

func TestNewOptions(t *testing.T) {
	fake := &fakeSearch{}
	o := NewOptions(WithSearch(fake), WithWorkers(0), WithWorkers(3))
	assert.Equal(t, 3, o.Workers)
	assert.Same(t, fake, o.Search)
	assert.Nil(t, o.Remover)
}

func TestOutcomeHook(t *testing.T) {
	root := t.TempDir()
	createFile(t, filepath.Join(root, "a", target))
	createFile(t, filepath.Join(root, "b", target))

	var seen []types.DeletionOutcome
	opts := NewOptions(WithOutcomeHook(func(o types.DeletionOutcome) {
		seen = append(seen, o)
	}))
	snap := buildSnapshot(t, []string{root})
	got := ScanTree(context.Background(), root, snap, opts)

	require.Len(t, seen, 2)
	assert.Equal(t, 2, got.Deleted)
	for _, o := range seen {
		assert.True(t, o.Success)
		assert.Equal(t, types.TriggerInitialScan, o.Trigger)
		assert.Equal(t, int64(len("content")), o.Size)
	}
}
