package middleware

import (
	"net/http"
	"strings"

	"audit-auth/pkg/utils"

	"go.uber.org/zap"
)

type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// Auth requires a valid "Authorization: Bearer <token>" header and stores
// the token's user id in the request context.
func Auth(tokens TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token", utils.CodeInvalidToken)
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>", utils.CodeInvalidToken)
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				logger.Warn("Rejected bearer token",
					zap.Error(err),
					zap.String("request_id", utils.GetRequestIDFromContext(r.Context())),
				)
				utils.ResponseUnauthorized(w, "Invalid or expired token", utils.CodeInvalidToken)
				return
			}

			ctx := utils.SetUserContext(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
