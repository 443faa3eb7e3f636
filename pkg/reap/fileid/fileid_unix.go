//go:build unix

package fileid

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Of returns the (device, inode) pair of path without following a final
// symlink.
func Of(path string) (ID, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return ID{}, fmt.Errorf("lstat %s: %w", path, err)
	}
	return ID{Dev: uint64(st.Dev), Ino: uint64(st.Ino)}, nil //nolint:unconvert // Dev is int32 on darwin
}
