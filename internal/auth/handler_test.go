package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitzonehq/fitzone/pkg"
)

type fakeProvider struct {
	identity    *Identity
	authErr     error
	gotCode     string
	authCodeURL string
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return p.authCodeURL + "?state=" + state
}

func (p *fakeProvider) Authenticate(_ context.Context, code string) (*Identity, error) {
	p.gotCode = code
	if p.authErr != nil {
		return nil, p.authErr
	}
	return p.identity, nil
}

type fakeUserStore struct {
	upserted []Identity
}

func (s *fakeUserStore) UpsertIdentity(_ context.Context, identity Identity) (string, error) {
	s.upserted = append(s.upserted, identity)
	return identity.Subject, nil
}

type fakeLoginService struct {
	token        string
	loggedInUser string
	loggedOut    []string
	logoutErr    error
}

func (s *fakeLoginService) Login(_ context.Context, userID string, _ time.Time) (string, error) {
	s.loggedInUser = userID
	return s.token, nil
}

func (s *fakeLoginService) Logout(_ context.Context, token string) error {
	if s.logoutErr != nil {
		return s.logoutErr
	}
	s.loggedOut = append(s.loggedOut, token)
	return nil
}

func testAuthHandler(t *testing.T, provider Provider) (*mux.Router, *fakeUserStore, *fakeLoginService) {
	t.Helper()

	passwordHash, err := pkg.HashPassword("adminpass")
	require.NoError(t, err)

	users := &fakeUserStore{}
	service := &fakeLoginService{token: "sess-token-1"}
	handler := NewHandler(NewHandlerParams{
		Provider:          provider,
		Users:             users,
		Service:           service,
		AdminUsername:     "admin",
		AdminPasswordHash: passwordHash,
	})

	noRateLimit := func(next http.Handler) http.Handler { return next }

	router := mux.NewRouter()
	handler.SetupRoutes(router.PathPrefix("/api").Subrouter(), noRateLimit)
	return router, users, service
}

func TestHandler_LoginRedirect(t *testing.T) {
	provider := &fakeProvider{authCodeURL: "https://auth.example.com/authorize"}
	router, _, _ := testAuthHandler(t, provider)

	req := httptest.NewRequest("GET", "/api/login", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "https://auth.example.com/authorize?state=")

	cookies := rr.Result().Cookies()
	var stateCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == stateCookieName {
			stateCookie = c
		}
	}
	require.NotNil(t, stateCookie)
	assert.NotEmpty(t, stateCookie.Value)
}

func TestHandler_Callback(t *testing.T) {
	provider := &fakeProvider{
		identity: &Identity{
			Subject:   "ext-user-1",
			Email:     "meera@example.com",
			FirstName: "Meera",
			LastName:  "Iyer",
		},
	}
	router, users, service := testAuthHandler(t, provider)

	req := httptest.NewRequest("GET", "/api/callback?code=auth-code-1&state=st1", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "st1"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.Equal(t, "auth-code-1", provider.gotCode)

	require.Len(t, users.upserted, 1)
	assert.Equal(t, "meera@example.com", users.upserted[0].Email)
	assert.Equal(t, "ext-user-1", service.loggedInUser)

	var sessionCookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == SessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
	assert.Equal(t, "sess-token-1", sessionCookie.Value)
}

func TestHandler_Callback_StateMismatch(t *testing.T) {
	provider := &fakeProvider{identity: &Identity{Subject: "ext-user-1"}}
	router, users, _ := testAuthHandler(t, provider)

	req := httptest.NewRequest("GET", "/api/callback?code=auth-code-1&state=st1", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "other"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, users.upserted)
}

func TestHandler_Callback_AuthFailed(t *testing.T) {
	provider := &fakeProvider{authErr: fmt.Errorf("code expired")}
	router, users, _ := testAuthHandler(t, provider)

	req := httptest.NewRequest("GET", "/api/callback?code=bad-code&state=st1", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "st1"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, users.upserted)
}

func TestHandler_PasswordLogin(t *testing.T) {
	router, users, service := testAuthHandler(t, &fakeProvider{})

	body, err := json.Marshal(map[string]string{
		"username": "admin",
		"password": "adminpass",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"token":"sess-token-1"}`, rr.Body.String())
	require.Len(t, users.upserted, 1)
	assert.Equal(t, "local-admin", users.upserted[0].Subject)
	assert.Equal(t, "local-admin", service.loggedInUser)
}

func TestHandler_PasswordLogin_WrongPassword(t *testing.T) {
	router, users, _ := testAuthHandler(t, &fakeProvider{})

	body, err := json.Marshal(map[string]string{
		"username": "admin",
		"password": "nope",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, users.upserted)
}

func TestHandler_Logout(t *testing.T) {
	router, _, service := testAuthHandler(t, &fakeProvider{})

	req := httptest.NewRequest("GET", "/api/logout", nil)
	req.Header.Set(TokenHeader, "sess-token-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"loggedOut":true}`, rr.Body.String())
	assert.Equal(t, []string{"sess-token-1"}, service.loggedOut)
}

func TestHandler_Logout_NoToken(t *testing.T) {
	router, _, service := testAuthHandler(t, &fakeProvider{})

	req := httptest.NewRequest("GET", "/api/logout", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, service.loggedOut)
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, TokenFromRequest(req))

	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", TokenFromRequest(req))

	// header wins over cookie
	req.Header.Set(TokenHeader, "from-header")
	assert.Equal(t, "from-header", TokenFromRequest(req))
}
