// Package apperr defines the classified errors returned by the notes core
// and the mapping from those errors to HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidID          = errors.New("the `id` is not valid")
	ErrMissingTitle       = errors.New("missing `title` in request body")
	ErrFolderInvalid      = errors.New("the `folderId` is not valid")
	ErrTagsInvalid        = errors.New("the `tags` array contains an invalid `id`")
	ErrNotFound           = errors.New("not found")
	ErrFolderNotEmpty     = errors.New("folder still contains notes")
	ErrDuplicateName      = errors.New("name already exists")
	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrMalformedBody      = errors.New("invalid JSON body")
	ErrMissingCredentials = errors.New("missing credentials")
	ErrValidation         = errors.New("validation error")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrRateLimited        = errors.New("too many requests")
)

// Status returns the HTTP status for err. Unclassified errors map to 500.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrMissingTitle),
		errors.Is(err, ErrFolderInvalid),
		errors.Is(err, ErrTagsInvalid),
		errors.Is(err, ErrDuplicateName),
		errors.Is(err, ErrMalformedBody),
		errors.Is(err, ErrMissingCredentials):
		return http.StatusBadRequest
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrFolderNotEmpty):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Public reports whether err carries a message that is safe to show to the client.
func Public(err error) bool {
	return Status(err) < http.StatusInternalServerError
}

// Message returns the text a client may see for a public err. Kinds that
// storage reports carry driver details and operation names in their chain,
// so only their fixed text is shown.
func Message(err error) string {
	for _, kind := range []error{ErrDuplicateName, ErrNotFound} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return err.Error()
}
