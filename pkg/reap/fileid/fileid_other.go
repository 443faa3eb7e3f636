//go:build !unix

package fileid

import "errors"

// ErrUnsupported is returned where the platform exposes no inode numbers.
var ErrUnsupported = errors.New("file identity not supported on this platform")

// Of always fails on this platform; Set falls back to path identity.
func Of(string) (ID, error) {
	return ID{}, ErrUnsupported
}
