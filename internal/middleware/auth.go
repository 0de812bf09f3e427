package middleware

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/fitzonehq/fitzone/internal/auth"
	"github.com/fitzonehq/fitzone/pkg"
)

// publicPaths can be visited without a session
var publicPaths = map[string]bool{
	"/":                     true,
	"/api/version":          true,
	"/api/workout-types":    true,
	"/api/trainers":         true,
	"/api/class-schedule":   true,
	"/api/membership-plans": true,
	"/api/init-data":        true,
	"/api/login":            true,
	"/api/logout":           true,
	"/api/callback":         true,
}

// publicPrefixes: public paths with a variable suffix, e.g. /api/trainers/{id}
var publicPrefixes = []string{
	"/api/exercises/",
	"/api/trainers/",
	"/api/class-schedule/",
}

func pathIsPublic(path string) bool {
	if publicPaths[path] {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// AuthCheck rejects requests to protected paths without a live session,
// and stores the logged in user ID in the request context
func AuthCheck(loginChecker auth.Checker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if pathIsPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token := auth.TokenFromRequest(r)
			userID, err := loginChecker.UserID(r.Context(), token)
			if err != nil {
				if !errors.Is(err, auth.ErrNotLoggedIn) {
					log.Errorf("auth check [%s]: %s", r.URL.Path, err)
				} else {
					log.Tracef("auth check [%s]: not logged in", r.URL.Path)
				}
				pkg.WriteResponse(w, pkg.ContentType.Text, "no can do", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithUserID(r.Context(), userID)))
		})
	}
}
