package db

import "errors"

// NotFoundError reports a missing document; callers that can default (fresh
// boot, empty registry) check for it instead of failing.
type NotFoundError struct {
	Key     string
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func IsNotFoundError(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
