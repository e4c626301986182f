package ports

import (
	"context"
	"errors"
)

// ErrNoSession is returned when a token resolves to no live session.
var ErrNoSession = errors.New("no session")

// SessionResolver answers the only two questions this service ever asks
// the authentication collaborator: who is the caller, and are they
// present. How the session was established is out of scope.
type SessionResolver interface {
	// Resolve maps a bearer token to a caller ID, or ErrNoSession.
	Resolve(ctx context.Context, token string) (callerID string, err error)
}
