package handlers

import (
	"github.com/kashguard/go-sigauth/internal/api"
	"github.com/kashguard/go-sigauth/internal/api/handlers/common"
	"github.com/kashguard/go-sigauth/internal/api/handlers/data"
	"github.com/kashguard/go-sigauth/internal/api/handlers/sig"
	"github.com/labstack/echo/v4"
)

// AttachAllRoutes attaches all registered routes to the server's router
// groups and records them in s.Router.Routes.
func AttachAllRoutes(s *api.Server) {
	s.Router.Routes = []*echo.Route{
		common.GetHealthyRoute(s),
		common.GetReadyRoute(s),
		data.GetDataRoute(s),
		sig.PostSignRoute(s),
		sig.PostVerifyRoute(s),
	}
}
