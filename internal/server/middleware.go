package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

type contextKey string

const contextKeyIdentity contextKey = "identity"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		elapsed := time.Since(started)
		if s.metrics != nil {
			s.metrics.HTTPRequests.WithLabelValues(r.Method, strconv.Itoa(rw.statusCode)).Inc()
			s.metrics.HTTPDuration.WithLabelValues(r.Method).Observe(elapsed.Seconds())
		}

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": elapsed.Milliseconds(),
		}).Info("http request")
	})
}

// RequireRole rejects requests without a valid access token whose role is
// one of roles.
func (s *Server) RequireRole(roles ...types.AuthRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := s.auth.Identify(r.Context(), r)
			if err != nil {
				if !errors.Is(err, ErrNoToken) {
					s.logger.WithError(err).Debug("rejected access token")
				}
				s.writeError(w, http.StatusUnauthorized, "Unauthorized User", nil)
				return
			}

			if !slices.Contains(roles, id.Role) {
				s.logger.WithFields(logrus.Fields{
					"subject": id.Subject,
					"role":    id.Role,
				}).Debug("role not allowed")
				s.writeError(w, http.StatusUnauthorized, "Unauthorized User", nil)
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyIdentity, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func identityFrom(ctx context.Context) types.Identity {
	id, _ := ctx.Value(contextKeyIdentity).(types.Identity)
	return id
}

func (s *Server) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")
			http.Redirect(w, r, newURL.String(), http.StatusPermanentRedirect)
			return
		}

		next.ServeHTTP(w, r)
	})
}
