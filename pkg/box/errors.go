package box

import "errors"

var (
	// ErrNotConfigured indicates no JWT app credentials were provided.
	ErrNotConfigured = errors.New("box credentials not configured")
	// ErrInvalidCredentials indicates the JWT app config JSON is malformed
	// or names neither an enterprise nor a user subject.
	ErrInvalidCredentials = errors.New("box credentials invalid")
	// ErrAuthentication indicates the signed-assertion token exchange failed.
	ErrAuthentication = errors.New("box authentication failed")
	// ErrBackend indicates a Box content API call failed.
	ErrBackend = errors.New("box request failed")
)
