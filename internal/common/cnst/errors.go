package cnst

import "errors"

var (
	// ErrTenantNotFound is returned when no tenant account exists for an id
	ErrTenantNotFound = errors.New("tenant account not found")
	// ErrDuplicateTenantUser is returned when a tenant signup reuses a database user
	ErrDuplicateTenantUser = errors.New("duplicate tenant database user")
	// ErrSessionNotFound is returned when a session id has no live session
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoActiveRole is returned when a session carries no recognized role
	ErrNoActiveRole = errors.New("session carries no active role")
)
