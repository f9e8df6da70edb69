package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	jwtutil "github.com/Dias221467/Message_Catalog/pkg/jwt"
	"github.com/Dias221467/Message_Catalog/pkg/logger"
)

type contextKey string

// UserContextKey is where AuthMiddleware stores the session claims.
const UserContextKey contextKey = "user"

// TokenCookieName is the HTTP-only cookie carrying the session token.
const TokenCookieName = "token"

// WriteError renders an error as the JSON failure envelope.
func WriteError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.HTTPStatus(kind))
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"kind":    kind,
		"message": apperr.Message(err),
	})
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// AuthMiddleware rejects requests without a valid session token and puts
// the claims into the request context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				WriteError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
				return
			}

			claims, err := jwtutil.ValidateToken(token, secret)
			if err != nil {
				logger.Log.WithError(err).WithField("path", r.URL.Path).Warn("Rejected session token")
				WriteError(w, apperr.New(apperr.KindUnauthorized, "invalid or expired session"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims)))
		})
	}
}

// WithUser returns a context carrying claims.
func WithUser(ctx context.Context, claims *jwtutil.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

// GetUserFromContext returns the session claims, or nil outside AuthMiddleware.
func GetUserFromContext(ctx context.Context) *jwtutil.Claims {
	claims, _ := ctx.Value(UserContextKey).(*jwtutil.Claims)
	return claims
}

// RoleLookup returns the role currently stored for a user.
type RoleLookup func(ctx context.Context, userID string) (string, error)

// RefreshRole swaps the role carried by the token for the stored one, so a
// promotion or demotion applies to sessions issued before it. It must run
// after AuthMiddleware.
func RefreshRole(lookup RoleLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				next.ServeHTTP(w, r)
				return
			}

			role, err := lookup(r.Context(), claims.UserID)
			if err != nil {
				WriteError(w, err)
				return
			}
			if role != claims.Role {
				logger.Log.WithField("userID", claims.UserID).
					Debugf("Session role %q replaced by stored role %q", claims.Role, role)
				fresh := *claims
				fresh.Role = role
				r = r.WithContext(WithUser(r.Context(), &fresh))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole lets through only sessions holding one of the roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				WriteError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			logger.Log.Warnf("User %s with role %q denied access to %s", claims.UserID, claims.Role, r.URL.Path)
			WriteError(w, apperr.Permission("insufficient permissions"))
		})
	}
}
