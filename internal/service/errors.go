package service

import (
	"errors"

	"portal/internal/apperr"
	"portal/internal/repository"
)

// notFound maps a repository miss to a 404 with msg; anything else is internal.
func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Internal(err)
}

// conflict maps a unique index violation to a 409 with msg; anything else is internal.
func conflict(err error, msg string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperr.Conflict(msg)
	}
	return passthrough(err)
}

// passthrough keeps application errors raised inside a transaction and wraps the rest.
func passthrough(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal(err)
}
