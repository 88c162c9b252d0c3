package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"regportal-go/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

// JWTAuth validates the bearer token and stores its claims in the request context.
func JWTAuth(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			bearerToken := strings.Split(authHeader, " ")
			if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
				writeAuthError(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			claims, err := utils.ValidateToken(bearerToken[1])
			if err != nil {
				logger.WarnContext(r.Context(), "token validation failed", "path", r.URL.Path, "error", err)
				writeAuthError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose claims do not carry role.
func RequireRole(role string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r)
			if claims == nil {
				writeAuthError(w, http.StatusUnauthorized, "Unauthorized - No user context")
				return
			}

			if claims.Role != role {
				logger.WarnContext(r.Context(), "role check failed",
					"user_id", claims.UserID,
					"role", claims.Role,
					"required", role,
					"path", r.URL.Path)
				writeAuthError(w, http.StatusForbidden, role+" access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GetUserFromContext(r *http.Request) *utils.Claims {
	if claims, ok := r.Context().Value(UserContextKey).(*utils.Claims); ok {
		return claims
	}
	return nil
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
	})
}
