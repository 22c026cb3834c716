package endpoint

import (
	stderrors "errors"
	"io/fs"

	"github.com/kbukum/pypeline/errors"
)

// FromOSError converts a filesystem error raised while opening path into an AppError.
func FromOSError(path string, mode Mode, err error) *errors.AppError {
	if err == nil {
		return nil
	}
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		return errors.NotFound("file", path).WithCause(err)
	case stderrors.Is(err, fs.ErrPermission):
		return errors.PermissionDenied(path, mode.String()).WithCause(err)
	default:
		return errors.EndpointUnavailable(path, err)
	}
}
