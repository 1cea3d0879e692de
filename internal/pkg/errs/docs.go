// Package errs provides the error taxonomy shared by every layer of the
// fulfillment service.
//
// Each kind follows the same shape: a sentinel (ErrObjectNotFound,
// ErrValueIsInvalid, ErrValueIsOutOfRange, ErrValueIsRequired, ErrConflict,
// ErrForbidden), a struct carrying the offending parameter and an optional
// cause, and constructors with and without that cause. Unwrap returns the
// sentinel so callers classify with errors.Is.
//
// The HTTP adapter maps the sentinels onto status codes:
//
//	ErrValueIsRequired, ErrValueIsInvalid, ErrValueIsOutOfRange -> 400
//	ErrForbidden                                                -> 403
//	ErrObjectNotFound                                           -> 404
//	ErrConflict                                                 -> 409
//
// Anything else is an internal error and is logged, not echoed to the client.
package errs
