package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "podium/pkg/domain-errors"
	"podium/pkg/platform/httputil"
	"podium/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	Subject string
	Role    string
}

// RequireAuth admits requests that carry a valid bearer token with the given
// role and stores the token subject as the request actor.
func RequireAuth(validator JWTValidator, role string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"request_id", requestID,
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			if role != "" && claims.Role != role {
				logger.WarnContext(ctx, "forbidden - role mismatch",
					"request_id", requestID,
					"subject", claims.Subject,
					"role", claims.Role,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "insufficient role"))
				return
			}

			ctx = requestcontext.WithActor(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
