package auth

import "context"

// LoginTestChecker is a Checker for tests, resolves tokens
// from a plain map
type LoginTestChecker struct {
	// LoggedSessions: token -> user ID
	LoggedSessions map[string]string
}

func NewLoginTestChecker() *LoginTestChecker {
	return &LoginTestChecker{
		LoggedSessions: map[string]string{},
	}
}

func (c *LoginTestChecker) UserID(_ context.Context, token string) (string, error) {
	userID, ok := c.LoggedSessions[token]
	if !ok {
		return "", ErrNotLoggedIn
	}
	return userID, nil
}
