package sig

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/kashguard/go-sigauth/internal/api"
	"github.com/kashguard/go-sigauth/internal/api/httperrors"
	"github.com/kashguard/go-sigauth/internal/sig/request"
	"github.com/kashguard/go-sigauth/internal/types"
	"github.com/kashguard/go-sigauth/internal/util"
	"github.com/labstack/echo/v4"
)

func PostVerifyRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Sig.POST("/verify", postVerifyHandler(s))
}

// postVerifyHandler verifies a described request. Every rejection maps to
// the same generic response body with valid=false; the reason code is
// kept in internal logs only.
func postVerifyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostVerifyPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		policyName := body.Policy
		if policyName == "" {
			policyName = s.Config.Sig.DefaultPolicy
		}

		pol, err := s.Policies.Get(policyName)
		if err != nil {
			return httperrors.NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeGeneric, "Unknown verification policy")
		}

		var payload []byte
		if len(body.Body) > 0 {
			payload = body.Body
		}

		signable := request.New(request.Method(*body.Method), *body.TargetURI, body.Headers, payload)

		result, err := s.VerifyService.Verify(ctx, signable, pol)
		if err != nil {
			log.Warn().
				Str("reason", string(result.Reason)).
				Str("key_id", result.KeyID).
				Str("policy", pol.Name).
				Msg("Verification rejected")

			response := &types.PostVerifyResponse{
				Valid:  swag.Bool(false),
				Policy: pol.Name,
			}
			return util.ValidateAndReturn(c, http.StatusOK, response)
		}

		response := &types.PostVerifyResponse{
			Valid:  swag.Bool(true),
			KeyID:  result.KeyID,
			Policy: pol.Name,
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
