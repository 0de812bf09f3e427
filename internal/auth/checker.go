package auth

import (
	"context"
	"errors"
)

var ErrNotLoggedIn = errors.New("not logged in")

// Checker resolves a session token into the logged in user ID
type Checker interface {
	// UserID returns the user ID for the given session token, or
	// ErrNotLoggedIn if the token does not belong to a live session
	UserID(ctx context.Context, token string) (string, error)
}
