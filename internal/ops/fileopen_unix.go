//go:build !windows

package ops

import (
	stderrors "errors"
	"os"
	"syscall"

	"github.com/hpungsan/promptbase/internal/errors"
)

// openFileNoFollow opens path refusing a symlink as the last component.
func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	fd, err := syscall.Open(path, flag|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, uint32(perm))
	if err != nil {
		return nil, noFollowError(path, err)
	}
	return os.NewFile(uintptr(fd), path), nil
}

// openFileNoFollowRead is openFileNoFollow for import reads.
func openFileNoFollowRead(path string) (*os.File, error) {
	return openFileNoFollow(path, syscall.O_RDONLY, 0)
}

func noFollowError(path string, err error) error {
	switch {
	case stderrors.Is(err, syscall.ELOOP):
		return errors.NewInvalidRequest("path must not be a symlink")
	case stderrors.Is(err, syscall.ENOENT):
		return errors.NewFileNotFound(path)
	default:
		return err
	}
}
