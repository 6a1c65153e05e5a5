package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pawlink/pawlink-backend/internal/api/httpx"
	"github.com/pawlink/pawlink-backend/internal/auth"
)

type claimsKey struct{}

// WithClaims attaches the resolved caller to the context. Exported so handler
// tests can build authenticated requests without minting tokens.
func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func GetClaims(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok
}

func UserID(ctx context.Context) (string, bool) {
	if c, ok := GetClaims(ctx); ok {
		return c.UserID, true
	}
	return "", false
}

type AuthMiddleware struct {
	TM *auth.TokenManager
}

func NewAuthMiddleware(tm *auth.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{TM: tm}
}

// Auth resolves the caller from a Bearer access token. Refresh tokens are
// rejected here; they are only good for /auth/refresh.
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
			httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		token := strings.TrimSpace(ah[len("Bearer "):])

		claims, isRefresh, err := m.TM.ParseAny(token)
		if err != nil || isRefresh {
			httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}
