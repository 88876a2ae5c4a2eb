package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Claims are the JWT claims carried by access tokens. Role is a single role
// name: admin, physician, nurse, or patient.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
}

// JWTConfig holds JWT validation settings.
type JWTConfig struct {
	Secret []byte
	Issuer string
}

// JWTMiddleware returns middleware that validates HS256 bearer tokens and
// places the authenticated user on the request context. Requests without a
// valid token are rejected with 401.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c.Request())
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
				}
				return cfg.Secret, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token issuer")
			}

			ctx := WithUser(c.Request().Context(), claims.Subject, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// DevAuthMiddleware returns middleware that grants every request admin access.
// Only for local development; the server refuses this mode in production.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := WithUser(c.Request().Context(), "dev-user", "admin")
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// IssueToken signs a new access token for the given subject and role. Used by
// tests and local tooling.
func IssueToken(cfg JWTConfig, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cfg.Secret)
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("authorization header must be a bearer token")
	}
	return strings.TrimSpace(parts[1]), nil
}
