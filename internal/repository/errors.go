// Package repository defines the data access layer and the sentinel errors
// shared across its repositories. Handlers use the sentinels to pick the
// right HTTP status: validation failures for dangling references, 401 for
// dead tokens, 403 for foreign payout listings.
package repository

import "errors"

// ErrEmailExists is returned when a signup collides with a registered email.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// ErrVenueNotFound is returned when a venue lookup or referential check
// matches no row.
var ErrVenueNotFound = errors.New("venue not found")

// ErrTokenNotFound is returned when a bearer token hash is unknown, expired
// or revoked.
var ErrTokenNotFound = errors.New("token not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")
