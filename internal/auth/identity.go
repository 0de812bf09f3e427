package auth

import "context"

// Identity is the user profile returned by the external identity provider
type Identity struct {
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	FirstName string `json:"given_name"`
	LastName  string `json:"family_name"`
	ImageURL  string `json:"picture"`
}

// Provider abstracts the external identity provider used for browser logins
type Provider interface {
	// AuthCodeURL returns the provider URL the browser should be sent to
	AuthCodeURL(state string) string
	// Authenticate exchanges the authorization code for the user identity
	Authenticate(ctx context.Context, code string) (*Identity, error)
}
