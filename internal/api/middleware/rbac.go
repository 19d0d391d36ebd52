package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAuthority gates a route on the granted authorities injected by Auth.
// The request passes when the principal holds at least one of the given
// labels; otherwise it fails with 403.
func RequireAuthority(labels ...string) echo.MiddlewareFunc {
	required := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		required[l] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			granted, _ := c.Get(CtxAuthorities).([]string)
			for _, label := range granted {
				if _, ok := required[label]; ok {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "access denied")
		}
	}
}
