package data

import (
	"net/http"

	"github.com/kashguard/go-sigauth/internal/api"
	"github.com/kashguard/go-sigauth/internal/api/middleware"
	"github.com/labstack/echo/v4"
)

func GetDataRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Data.GET("", getDataHandler(s))
}

// getDataHandler is a sample protected resource, it is only reachable
// through the signature authentication middleware and echoes back the
// key id the request was signed with.
func getDataHandler(_ *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		keyID, _ := c.Get(middleware.ContextKeyKeyID).(string)

		return c.JSON(http.StatusOK, map[string]string{
			"data":   "ok",
			"key_id": keyID,
		})
	}
}
