package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/statementkit/statementkit/internal/server/accounts"
	"github.com/statementkit/statementkit/internal/shared"
)

type ctxKey string

const accountKey ctxKey = "account"

// withAuth resolves the bearer token into the current account. Restore is
// fail-closed: a token for a vanished account is rejected, not trusted.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, shared.ErrUnauthorized)
			return
		}

		account, err := s.sessions.Restore(r.Context(), token)
		if err != nil {
			respondError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), accountKey, account)
		next(w, r.WithContext(ctx))
	}
}

func accountFrom(ctx context.Context) *accounts.Account {
	account, _ := ctx.Value(accountKey).(*accounts.Account)
	return account
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.logger.Info(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start).String())
	})
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
