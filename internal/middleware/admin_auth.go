package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/keydesk/keydesk/internal/auth"
)

// AdminAuthConfig holds configuration for the admin auth middleware.
type AdminAuthConfig struct {
	Logger *slog.Logger
	// Token is the static admin bearer token.
	Token string
}

// AdminAuth returns middleware that requires the static admin bearer token.
//
// Missing or malformed Authorization header: 401.
// Well-formed header with the wrong token: 403.
func AdminAuth(cfg AdminAuthConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				reason := "missing_token"
				if errors.Is(err, auth.ErrMalformedToken) {
					reason = "malformed_token"
				}
				logAuthFailure(logger, r, reason)
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or malformed Authorization header")
				return
			}

			if !auth.TokenMatches(token, cfg.Token) {
				logAuthFailure(logger, r, "invalid_token")
				writeError(w, http.StatusForbidden, "FORBIDDEN", "Invalid admin token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// logAuthFailure logs without the presented token.
func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("admin authentication failed",
		slog.String("reason", reason),
		slog.String("ip", clientIP(r)),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}
