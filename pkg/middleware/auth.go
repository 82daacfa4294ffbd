package middleware

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/httpapi"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims mirrors the tokens issued by the login service.
type Claims struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
	MemberID string `json:"memberId,omitempty"`
	jwt.RegisteredClaims
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", ErrMissingToken
	}
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(auth[7:])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authorize verifies the bearer token and stores the caller identity in the context.
func Authorize(secret string) mux.MiddlewareFunc {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				httpapi.WriteAPIError(w, r, http.StatusUnauthorized, "AUTH_REQUIRED", "no token provided")
				return
			}
			claims, err := ParseToken(raw, key)
			if err != nil {
				composables.UseLogger(r.Context()).WithError(err).Warn("token verification failed")
				httpapi.WriteAPIError(w, r, http.StatusForbidden, "AUTH_INVALID_TOKEN", "invalid token")
				return
			}
			ctx := composables.WithIdentity(r.Context(), composables.Identity{
				UserID:   claims.ID,
				Username: claims.Username,
				Role:     claims.Role,
				MemberID: claims.MemberID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose identity does not carry one of roles.
func RequireRole(roles ...string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := composables.UseIdentity(r.Context())
			if !ok {
				httpapi.WriteAPIError(w, r, http.StatusUnauthorized, "AUTH_REQUIRED", "no token provided")
				return
			}
			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpapi.WriteAPIError(w, r, http.StatusForbidden, "AUTH_FORBIDDEN", "access denied")
		})
	}
}
