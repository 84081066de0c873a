// Package common defines shared constants and sentinel errors used across
// the matchmaking engine. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Generic service-level errors.
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Registration / profile errors.
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotRegistered     = errors.New("not registered")
	ErrInvalidAttribute  = errors.New("invalid attribute")

	// Match lifecycle errors.
	ErrSelfMatch         = errors.New("cannot request a match with yourself")
	ErrTargetUnavailable = errors.New("target unavailable")
	ErrAlreadyProcessed  = errors.New("request already processed")

	// Ciphertext / reveal errors.
	ErrAccessDenied       = errors.New("ciphertext access denied")
	ErrInvalidRevealProof = errors.New("invalid reveal proof")

	// Chat errors.
	ErrRoomInactive = errors.New("chat room inactive")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
