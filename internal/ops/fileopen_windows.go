//go:build windows

package ops

import (
	"os"

	"github.com/hpungsan/promptbase/internal/errors"
)

// openFileNoFollow has no O_NOFOLLOW on Windows; ValidatePath has already
// rejected symlinks.
func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	f, err := os.OpenFile(path, flag, perm)
	if os.IsNotExist(err) {
		return nil, errors.NewFileNotFound(path)
	}
	return f, err
}

func openFileNoFollowRead(path string) (*os.File, error) {
	return openFileNoFollow(path, os.O_RDONLY, 0)
}
