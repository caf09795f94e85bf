// Package common defines shared constants and sentinel errors used across
// the Jara client and static server. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Credential store errors.
	ErrDuplicateAccount   = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Media store errors.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable means the persisted-state engine cannot be used.
	// Callers degrade to in-memory state instead of failing.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrProbeFailure marks a negative asset probe. It never leaves the
	// discovery engine.
	ErrProbeFailure = errors.New("probe failed")

	// Session / remote API errors.
	ErrUnauthorized = errors.New("unauthorized")
)
