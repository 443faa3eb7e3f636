package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/jamesainslie/reap/pkg/reap/types"
)

// bindMount mounts src onto dst for the rest of the test, skipping when
// the process may not mount.
func bindMount(t *testing.T, src, dst string) {
	t.Helper()
	if os.Geteuid() != 0 {
		t.Skip("bind mounts need root")
	}
	if err := unix.Mount(src, dst, "", unix.MS_BIND, ""); err != nil {
		t.Skipf("bind mount unavailable: %v", err)
	}
	t.Cleanup(func() { _ = unix.Unmount(dst, unix.MNT_DETACH) })
}

func TestScanTree_BindMountVisitedOnce(t *testing.T) {
	root := t.TempDir()
	shared := filepath.Join(root, "shared")
	createFile(t, filepath.Join(shared, target))
	createFile(t, filepath.Join(shared, "deep", target))

	mnt := filepath.Join(root, "other", "mnt")
	require.NoError(t, os.MkdirAll(mnt, 0o755))
	bindMount(t, shared, mnt)

	var seen []types.DeletionOutcome
	opts := NewOptions(WithOutcomeHook(func(o types.DeletionOutcome) {
		seen = append(seen, o)
	}))
	got := ScanTree(context.Background(), root, buildSnapshot(t, []string{root}), opts)

	assert.Equal(t, types.ScanCounters{Deleted: 2}, got)
	assert.Len(t, seen, 2, "each physical file is attempted once")
	assert.NoFileExists(t, filepath.Join(shared, target))
	assert.NoFileExists(t, filepath.Join(shared, "deep", target))
}

// Binding the scan root below itself makes the walk reach the root again.
func TestScanTree_BindMountOfRootSkipped(t *testing.T) {
	root := t.TempDir()
	createFile(t, filepath.Join(root, "a", target))
	loop := filepath.Join(root, "a", "loop")
	require.NoError(t, os.Mkdir(loop, 0o755))
	bindMount(t, root, loop)

	got := ScanTree(context.Background(), root, buildSnapshot(t, []string{root}), Options{})

	assert.Equal(t, 1, got.Deleted)
	assert.Zero(t, got.Benign)
}
