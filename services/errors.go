package services

import "errors"

// Error taxonomy shared by every service operation. Controllers translate
// these into HTTP status codes; anything else that escapes a transaction is
// wrapped as a StorageError and has already caused a rollback.

type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

type AuthorizationError struct{ Msg string }

func (e *AuthorizationError) Error() string { return e.Msg }

type NotFoundError struct{ Msg string }

func (e *NotFoundError) Error() string { return e.Msg }

// ConflictError is reserved for future idempotency keys; nothing raises it
// today.
type ConflictError struct{ Msg string }

func (e *ConflictError) Error() string { return e.Msg }

type StorageError struct{ Err error }

func (e *StorageError) Error() string { return "storage failure: " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsAuthorization(err error) bool {
	var e *AuthorizationError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// storage wraps a database error, passing service errors through untouched
// so a typed failure raised inside a transaction keeps its type.
func storage(err error) error {
	if err == nil {
		return nil
	}
	var v *ValidationError
	var a *AuthorizationError
	var n *NotFoundError
	var c *ConflictError
	if errors.As(err, &v) || errors.As(err, &a) || errors.As(err, &n) || errors.As(err, &c) {
		return err
	}
	return &StorageError{Err: err}
}
