package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// SessionCookie is the cookie carrying the session token for the rendered
// pages. API clients may send the same token as a bearer header instead.
const SessionCookie = "USERADMIN_SESSION"

// Context keys populated by Auth for downstream handlers.
const (
	CtxUsername    = "username"
	CtxAuthorities = "authorities"
	CtxTokenID     = "jti"
	CtxTokenExpiry = "token_expiry"
)

// TokenChecker reports whether a token id has been revoked. A nil checker
// disables revocation checks.
type TokenChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Auth validates the session token (cookie or bearer header) and injects the
// principal's username and authorities into the request context. Browser
// requests without a valid token are redirected to the login page; requests
// that presented a bearer header get a plain 401 instead.
func Auth(jwtSecret string, revoked TokenChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, bearer := extractToken(c)
			if raw == "" {
				return reject(c, bearer, "missing session token")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return reject(c, bearer, "invalid session token")
			}

			jti, _ := claims["jti"].(string)
			if revoked != nil && jti != "" {
				gone, err := revoked.IsRevoked(c.Request().Context(), jti)
				if err != nil {
					return err
				}
				if gone {
					return reject(c, bearer, "session revoked")
				}
			}

			c.Set(CtxUsername, stringClaim(claims, "sub"))
			c.Set(CtxAuthorities, authorityClaims(claims))
			c.Set(CtxTokenID, jti)
			c.Set(CtxTokenExpiry, expiryClaim(claims))

			return next(c)
		}
	}
}

func extractToken(c echo.Context) (raw string, bearer bool) {
	if h := c.Request().Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1], true
		}
		return "", true
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie.Value, false
	}
	return "", false
}

func reject(c echo.Context, bearer bool, msg string) error {
	if bearer {
		return echo.NewHTTPError(http.StatusUnauthorized, msg)
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

func authorityClaims(claims jwt.MapClaims) []string {
	raw, _ := claims["authorities"].([]interface{})
	labels := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			labels = append(labels, s)
		}
	}
	return labels
}

func expiryClaim(claims jwt.MapClaims) time.Time {
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
