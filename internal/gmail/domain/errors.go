package domain

import "errors"

var (
	// ErrNotConfigured means the Google client id/secret are absent from the
	// deployment; a configuration problem, not a user problem.
	ErrNotConfigured = errors.New("gmail integration not configured")

	// ErrNotConnected means no credential exists for the user; they must go
	// through the consent flow first.
	ErrNotConnected = errors.New("gmail not connected")

	// ErrReconnectRequired means a credential exists but the refresh exchange
	// failed; the user must re-authorize. The stored credential is kept.
	ErrReconnectRequired = errors.New("gmail token expired, reconnect required")

	// ErrInvalidState means the OAuth callback state failed HMAC verification.
	// Treated as a forgery attempt: no credential is written.
	ErrInvalidState = errors.New("invalid oauth state")
)
