package session

import "context"

// Store persists sessions between requests. Implementations must be safe
// for concurrent use.
type Store interface {
	// Save stores a session under its id.
	Save(ctx context.Context, s *Session) error
	// Get returns the session with the given id. Expired or unknown
	// sessions return cnst.ErrSessionNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}
