package common

import (
	"net/http"

	"github.com/kashguard/go-sigauth/internal/api"
	"github.com/labstack/echo/v4"
)

func GetReadyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/ready", getReadyHandler(s))
}

// getReadyHandler is a readiness probe, it reports whether all server
// components (including the database when the postgresql backend is
// active) are initialized.
func getReadyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.Ready() {
			return c.String(http.StatusServiceUnavailable, "Not ready")
		}

		if s.DB != nil {
			if err := s.DB.PingContext(c.Request().Context()); err != nil {
				return c.String(http.StatusServiceUnavailable, "Not ready")
			}
		}

		return c.String(http.StatusOK, "Ready")
	}
}
