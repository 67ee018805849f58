// Package shared defines sentinel errors and small utilities used across
// client and server layers of statementkit. Callers should use errors.Is
// to match these values.
package shared

import "errors"

var (

	// store-level errors
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")

	// session-level errors
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("incorrect password")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")

	// signup validation errors, in the order the checks run
	ErrMissingFields    = errors.New("please fill in all fields")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")

	// ledger errors
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrConversionInFlight  = errors.New("conversion already in progress")

	// guest quota errors
	ErrGuestQuota     = errors.New("monthly guest limit reached")
	ErrGuestPageLimit = errors.New("guest conversions are limited to single-page files")

	// generic internal failure surfaced to callers
	ErrInternal = errors.New("internal error")
)
