package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kopitani-id/kopitrace/internal/models"
	"github.com/kopitani-id/kopitrace/internal/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

// Claims is the resolved caller identity placed in the request context.
type Claims struct {
	UserID     string
	Email      string
	Role       string
	KoperasiID *uint
}

// CanWrite reports whether the caller may mutate cooperative data.
func (c *Claims) CanWrite() bool {
	return c.Role == models.RoleAdmin || c.Role == models.RoleOperator
}

// Auth verifies JWT bearer tokens and stores the claims in the context.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			mapClaims, err := utils.ValidateToken(parts[1], secret)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, fromMapClaims(mapClaims))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireWriteRole gates mutating endpoints to ADMIN/OPERATOR.
func RequireWriteRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFrom(r.Context())
		if claims == nil || !claims.CanWrite() {
			http.Error(w, "Insufficient role", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFrom extracts the caller claims from a request context, nil when absent.
func ClaimsFrom(ctx context.Context) *Claims {
	claims, _ := ctx.Value(UserContextKey).(*Claims)
	return claims
}

func fromMapClaims(mc jwt.MapClaims) *Claims {
	c := &Claims{}
	if v, ok := mc["id"].(string); ok {
		c.UserID = v
	}
	if v, ok := mc["email"].(string); ok {
		c.Email = v
	}
	if v, ok := mc["role"].(string); ok {
		c.Role = v
	}
	// JSON numbers decode as float64
	if v, ok := mc["koperasiId"].(float64); ok {
		id := uint(v)
		c.KoperasiID = &id
	}
	return c
}

// AccessibleKoperasiIDs returns the cooperative ids the caller may touch.
// ADMIN sees everything (nil slice means unscoped); other roles are limited to
// their own cooperative.
func (c *Claims) AccessibleKoperasiIDs() []uint {
	if c.Role == models.RoleAdmin {
		return nil
	}
	if c.KoperasiID != nil {
		return []uint{*c.KoperasiID}
	}
	return []uint{}
}
