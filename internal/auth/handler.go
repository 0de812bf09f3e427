package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/fitzonehq/fitzone/internal/telemetry/tracing"
	"github.com/fitzonehq/fitzone/pkg"
)

const (
	// TokenHeader carries the session token on authenticated requests
	TokenHeader = "X-FITZONE-TOKEN"
	// SessionCookieName is the cookie set after a browser login
	SessionCookieName = "fitzone_session"

	stateCookieName = "fitzone_auth_state"
)

// TokenFromRequest reads the session token from the request, either from
// the token header or from the session cookie
func TokenFromRequest(r *http.Request) string {
	if token := r.Header.Get(TokenHeader); token != "" {
		return token
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// UserStore persists identities received from the identity provider
type UserStore interface {
	// UpsertIdentity creates or updates the user for the given identity
	// and returns the user ID
	UpsertIdentity(ctx context.Context, identity Identity) (string, error)
}

type loginService interface {
	Login(ctx context.Context, userID string, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) error
}

type Handler struct {
	provider          Provider
	users             UserStore
	service           loginService
	adminUsername     string
	adminPasswordHash string
	secureCookies     bool
}

type NewHandlerParams struct {
	Provider          Provider
	Users             UserStore
	Service           loginService
	AdminUsername     string
	AdminPasswordHash string
	SecureCookies     bool
}

func NewHandler(params NewHandlerParams) *Handler {
	return &Handler{
		provider:          params.Provider,
		users:             params.Users,
		service:           params.Service,
		adminUsername:     params.AdminUsername,
		adminPasswordHash: params.AdminPasswordHash,
		secureCookies:     params.SecureCookies,
	}
}

// SetupRoutes registers the auth routes. The login endpoints get the
// provided rate limiting middleware to slow down brute-force attempts.
func (h *Handler) SetupRoutes(router *mux.Router, loginRateLimit mux.MiddlewareFunc) {
	loginRouter := router.PathPrefix("/login").Subrouter()
	loginRouter.HandleFunc("", h.handleLoginRedirect).Methods("GET").Name("login")
	loginRouter.HandleFunc("", h.handlePasswordLogin).Methods("POST", "OPTIONS").Name("password-login")
	loginRouter.Use(loginRateLimit)

	router.HandleFunc("/callback", h.handleCallback).Methods("GET").Name("callback")
	router.HandleFunc("/logout", h.handleLogout).Methods("GET", "OPTIONS").Name("logout")
}

// handleLoginRedirect sends the browser off to the identity provider
func (h *Handler) handleLoginRedirect(w http.ResponseWriter, r *http.Request) {
	state, err := pkg.GenerateRandomString(24)
	if err != nil {
		log.Errorf("login redirect: generate state: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int((5 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// handleCallback finishes the provider login: exchanges the code for an
// identity, upserts the user and starts a session
func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.callback")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	state := r.URL.Query().Get("state")
	stateCookie, cookieErr := r.Cookie(stateCookieName)
	if state == "" || cookieErr != nil || stateCookie.Value != state {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}

	identity, err := h.provider.Authenticate(ctx, code)
	if err != nil {
		log.Errorf("auth callback: authenticate: %s", err)
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	userID, err := h.users.UpsertIdentity(ctx, *identity)
	if err != nil {
		log.Errorf("auth callback: upsert user: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	token, err := h.service.Login(ctx, userID, time.Now())
	if err != nil {
		log.Errorf("auth callback: login: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Tracef("user %s logged in via identity provider", userID)

	h.setSessionCookie(w, token, DefaultTTL)
	// clear the state cookie
	http.SetCookie(w, &http.Cookie{
		Name: stateCookieName, Value: "", Path: "/", MaxAge: -1,
		HttpOnly: true, Secure: h.secureCookies,
	})

	http.Redirect(w, r, "/", http.StatusFound)
}

// handlePasswordLogin is for non-browser clients and local development:
// username + password in, session token out
func (h *Handler) handlePasswordLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.passwordLogin")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if creds.Username == "" || creds.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if creds.Username != h.adminUsername || !pkg.CheckPasswordHash(creds.Password, h.adminPasswordHash) {
		userIP, ipErr := pkg.ReadUserIP(r)
		if ipErr != nil {
			userIP = "unknown"
		}
		log.Warnf("failed password login attempt for [%s] from %s", creds.Username, userIP)
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	userID, err := h.users.UpsertIdentity(ctx, Identity{
		Subject:   "local-" + creds.Username,
		Email:     creds.Username + "@fitzone.local",
		FirstName: creds.Username,
	})
	if err != nil {
		log.Errorf("password login: upsert user: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	token, err := h.service.Login(ctx, userID, time.Now())
	if err != nil {
		log.Errorf("password login: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, token, DefaultTTL)
	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"token":%q}`, token))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.logout")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	token := TokenFromRequest(r)
	if token == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if err = h.service.Logout(ctx, token); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, "no can do", http.StatusUnauthorized)
			return
		}
		log.Errorf("logout: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, "", -time.Second)
	pkg.WriteJSONResponseOK(w, `{"loggedOut":true}`)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
