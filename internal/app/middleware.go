package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/aiutox/erp-calendar/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	userIdHeader   = "X-User-Id"
	timezoneHeader = "X-Timezone"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router) {
	r.Use(requestLogger)
	r.Use(userFromHeaders)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, req)
		log.WithFields(log.Fields{
			"method":   req.Method,
			"path":     req.URL.Path,
			"duration": time.Since(start),
		}).Debug("request handled")
	})
}

// userFromHeaders propagates the identity resolved by the gateway into the request context.
func userFromHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		uid := strings.TrimSpace(req.Header.Get(userIdHeader))
		if uid == "" {
			next.ServeHTTP(w, req)
			return
		}

		timezone := strings.TrimSpace(req.Header.Get(timezoneHeader))
		if timezone != "" {
			if _, err := time.LoadLocation(timezone); err != nil {
				log.Debugf("invalid timezone header %q: %v", timezone, err)
				http.Error(w, "invalid timezone", http.StatusBadRequest)
				return
			}
		}

		u := user.User{
			Uid:      uid,
			Settings: user.Settings{Timezone: timezone},
		}
		log.Tracef("user found: %s", u.Uid)
		next.ServeHTTP(w, req.WithContext(user.WithUser(req.Context(), u)))
	})
}
