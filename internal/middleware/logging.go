package middleware

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/fitzonehq/fitzone/pkg"
)

// LogRequest logs every incoming request with the caller IP
func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userAgent := r.Header.Get("User-Agent")
			userIP, err := pkg.ReadUserIP(r)
			if err != nil {
				userIP = "unknown"
			}

			log.Tracef("%s: [%s] %s %s", userIP, userAgent, r.Method, r.URL.Path)

			next.ServeHTTP(w, r)
		})
	}
}
