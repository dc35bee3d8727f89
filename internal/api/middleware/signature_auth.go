package middleware

import (
	"net/http"

	"github.com/kashguard/go-sigauth/internal/api"
	"github.com/kashguard/go-sigauth/internal/api/httperrors"
	"github.com/kashguard/go-sigauth/internal/sig/request"
	"github.com/kashguard/go-sigauth/internal/types"
	"github.com/kashguard/go-sigauth/internal/util"
	"github.com/labstack/echo/v4"
)

// ContextKeyKeyID is where the middleware stores the verified keyid for
// downstream handlers.
const ContextKeyKeyID = "sig_key_id"

// SignatureAuth verifies the message signature of every request passing
// through it, under the server's default policy. Any rejection collapses
// into one generic unauthorized response; the specific reason code is
// only logged, so the error taxonomy cannot be probed from outside.
func SignatureAuth(s *api.Server) echo.MiddlewareFunc {
	return SignatureAuthWithPolicy(s, s.Config.Sig.DefaultPolicy)
}

// SignatureAuthWithPolicy verifies requests under a named policy.
func SignatureAuthWithPolicy(s *api.Server, policyName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			log := util.LogFromContext(ctx)

			unauthorized := httperrors.NewHTTPError(http.StatusUnauthorized, types.PublicHTTPErrorTypeGeneric, "Unauthorized")

			pol, err := s.Policies.Get(policyName)
			if err != nil {
				log.Error().Err(err).Str("policy", policyName).Msg("Unknown verification policy")
				return unauthorized
			}

			signable, err := request.FromHTTP(c.Request())
			if err != nil {
				log.Warn().Err(err).Msg("Failed to snapshot request for verification")
				return unauthorized
			}

			result, err := s.VerifyService.Verify(ctx, signable, pol)
			if err != nil {
				log.Warn().
					Str("reason", string(result.Reason)).
					Str("key_id", result.KeyID).
					Str("policy", pol.Name).
					Msg("Request signature rejected")
				return unauthorized
			}

			c.Set(ContextKeyKeyID, result.KeyID)

			return next(c)
		}
	}
}
