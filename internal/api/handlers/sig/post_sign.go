package sig

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/kashguard/go-sigauth/internal/api"
	"github.com/kashguard/go-sigauth/internal/api/httperrors"
	sigerrors "github.com/kashguard/go-sigauth/internal/sig"
	"github.com/kashguard/go-sigauth/internal/sig/component"
	"github.com/kashguard/go-sigauth/internal/sig/request"
	"github.com/kashguard/go-sigauth/internal/sig/signing"
	"github.com/kashguard/go-sigauth/internal/sig/sigparams"
	"github.com/kashguard/go-sigauth/internal/types"
	"github.com/kashguard/go-sigauth/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func PostSignRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Sig.POST("/sign", postSignHandler(s))
}

func postSignHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostSignPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		seed, err := s.Keyring.Seed(*body.KeyID)
		if err != nil {
			log.Warn().Err(err).Msg("Unknown signing key")
			return httperrors.NewHTTPError(http.StatusNotFound, types.PublicHTTPErrorTypeGeneric, "Key not found")
		}

		var payload []byte
		if len(body.Body) > 0 {
			payload = body.Body
		}

		signable := request.New(request.Method(*body.Method), *body.TargetURI, body.Headers, payload)

		cfg := signing.Config{
			Algorithm:  sigparams.AlgorithmEd25519,
			KeyID:      *body.KeyID,
			PrivateKey: seed,
			Components: component.Components{
				Method:        true,
				TargetURI:     true,
				ContentDigest: body.ContentDigest,
				Headers:       body.CoveredHeaders,
			},
		}

		result, err := s.SignService.Sign(ctx, signable, cfg)
		if err != nil {
			log.Error().Err(err).Msg("Failed to sign request")
			if errors.Is(err, sigerrors.ErrCryptoUnavailable) || errors.Is(err, sigerrors.ErrFormat) {
				return httperrors.NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeGeneric, "Unable to sign request")
			}
			return httperrors.NewHTTPError(http.StatusInternalServerError, types.PublicHTTPErrorTypeGeneric, "Failed to sign request")
		}

		response := &types.PostSignResponse{
			SignatureInput:   swag.String(result.SignatureInput),
			Signature:        swag.String(result.Signature),
			Headers:          result.Headers,
			CanonicalMessage: result.CanonicalMessage,
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
