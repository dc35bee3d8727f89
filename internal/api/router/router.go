package router

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/kashguard/go-sigauth/internal/api"
	"github.com/kashguard/go-sigauth/internal/api/handlers"
	"github.com/kashguard/go-sigauth/internal/api/httperrors"
	"github.com/kashguard/go-sigauth/internal/api/middleware"
	"github.com/kashguard/go-sigauth/internal/types"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

func Init(s *api.Server) {
	s.Echo = echo.New()

	s.Echo.Debug = false
	s.Echo.HideBanner = true
	s.Echo.Logger.SetOutput(&echoLogger{})

	s.Echo.HTTPErrorHandler = HTTPErrorHandlerWithConfig(HTTPErrorHandlerConfig{
		HideInternalServerErrorDetails: s.Config.Echo.HideInternalServerErrorDetails,
	})

	s.Echo.Pre(echoMiddleware.RemoveTrailingSlash())

	s.Echo.Use(echoMiddleware.Recover())
	s.Echo.Use(echoMiddleware.RequestID())
	s.Echo.Use(middleware.Logger())

	s.Router = &api.Router{
		Routes: nil, // will be populated by handlers.AttachAllRoutes(s)

		Root:       s.Echo.Group(""),
		Management: s.Echo.Group("/-"),

		APIV1Sig: s.Echo.Group("/api/v1/sig"),

		// Sample resource group protected by signature authentication.
		APIV1Data: s.Echo.Group("/api/v1/data", middleware.SignatureAuth(s)),
	}

	handlers.AttachAllRoutes(s)
}

type HTTPErrorHandlerConfig struct {
	HideInternalServerErrorDetails bool
}

// HTTPErrorHandlerWithConfig renders every error bubbling out of a
// handler as a types.PublicHTTPError JSON body.
func HTTPErrorHandlerWithConfig(config HTTPErrorHandlerConfig) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var code int
		var payload interface{}

		switch e := err.(type) {
		case *httperrors.HTTPError:
			code = int(swag.Int64Value(e.Code))
			if e.Internal != nil {
				log.Warn().Err(e.Internal).Int("status", code).Msg("Internal error in HTTPError")
			}
			payload = e.PublicHTTPError
		case *httperrors.HTTPValidationError:
			code = int(swag.Int64Value(e.Code))
			if e.Internal != nil {
				log.Warn().Err(e.Internal).Int("status", code).Msg("Internal error in HTTPValidationError")
			}
			payload = e.PublicHTTPValidationError
		case *echo.HTTPError:
			code = e.Code

			title := http.StatusText(code)
			if msg, ok := e.Message.(string); ok && !(code == http.StatusInternalServerError && config.HideInternalServerErrorDetails) {
				title = msg
			}
			if e.Internal != nil {
				log.Warn().Err(e.Internal).Int("status", code).Msg("Internal error in echo.HTTPError")
			}

			payload = types.PublicHTTPError{
				Code:  swag.Int64(int64(code)),
				Type:  swag.String(types.PublicHTTPErrorTypeGeneric),
				Title: swag.String(title),
			}
		default:
			code = http.StatusInternalServerError

			title := err.Error()
			if config.HideInternalServerErrorDetails {
				title = http.StatusText(code)
			}
			log.Error().Err(err).Msg("Unhandled error in request")

			payload = types.PublicHTTPError{
				Code:  swag.Int64(int64(code)),
				Type:  swag.String(types.PublicHTTPErrorTypeGeneric),
				Title: swag.String(title),
			}
		}

		if c.Response().Committed {
			return
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, payload)
		}
		if err != nil {
			log.Error().Err(err).Msg("Failed to write error response")
		}
	}
}

// echoLogger discards echo's internal log output, everything relevant is
// emitted via zerolog.
type echoLogger struct{}

func (l *echoLogger) Write(p []byte) (int, error) {
	return len(p), nil
}
