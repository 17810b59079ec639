package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-todo-auth/internal/httputil"
	"github.com/redmonkez12/go-todo-auth/internal/logging"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const UserIDContextKey ContextKey = "user_id"

// Middleware is the token verification gate for protected routes. It holds
// only the codec; nothing is remembered between requests.
type Middleware struct {
	tokenService TokenService
}

func NewMiddleware(tokenService TokenService) *Middleware {
	return &Middleware{tokenService: tokenService}
}

// RequireAuth validates the bearer token and puts its subject in the context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.GetLoggerFromContext(r.Context())

		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			httputil.RespondErrorWithCode(w, "No token, authorization denied", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			logger.Warn("rejected request: malformed authorization header")
			httputil.RespondErrorWithCode(w, "invalid authorization header format", httputil.CodeInvalidAuthHeader, http.StatusUnauthorized)
			return
		}

		claims, err := m.tokenService.VerifyToken(strings.TrimSpace(parts[1]))
		if err != nil {
			// the kind stays in the logs only
			logger.Warn("rejected request: token verification failed", "reason", err.Error())
			httputil.RespondErrorWithCode(w, "Token is not valid", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		ctx := ContextWithUserID(r.Context(), claims.SubjectID)
		ctx = logging.WithLogger(ctx, logger.With("user_id", claims.SubjectID.String()))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ContextWithUserID returns a copy of ctx carrying the authenticated user id.
func ContextWithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	return userID, ok
}
