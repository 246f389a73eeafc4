//go:build windows

package ops

import (
	stderrors "errors"
	"os"

	"github.com/hpungsan/sigdecode/internal/errors"
)

// openFileNoFollow opens a report file for writing.
// Windows has no O_NOFOLLOW; ValidateExportPath rejects symlinks beforehand.
func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}

// openFileNoFollowRead opens a caller-supplied signal file read-only.
// ValidatePath rejects symlinks beforehand.
func openFileNoFollowRead(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewFileNotFound(path)
		}
		return nil, errors.NewSignalUnreadable(path, err)
	}
	return f, nil
}
