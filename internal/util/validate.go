package util

import (
	"net/http"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/kashguard/go-sigauth/internal/api/httperrors"
	"github.com/kashguard/go-sigauth/internal/types"
	"github.com/labstack/echo/v4"
)

// Validatable mirrors the go-openapi model contract so payload types can
// self-validate against the default format registry.
type Validatable interface {
	Validate(formats strfmt.Registry) error
}

// BindAndValidateBody binds the request body onto v and runs its
// validation, translating failures into public validation errors.
func BindAndValidateBody(c echo.Context, v Validatable) error {
	if err := c.Bind(v); err != nil {
		return httperrors.NewHTTPErrorWithInternal(http.StatusBadRequest, types.PublicHTTPErrorTypeGeneric, "Failed to bind request body", err)
	}

	if err := v.Validate(strfmt.Default); err != nil {
		return httperrors.NewHTTPValidationError(
			http.StatusBadRequest,
			types.PublicHTTPErrorTypeGeneric,
			"Invalid request",
			[]*types.HTTPValidationErrorDetail{
				{
					Key:   swag.String("body"),
					In:    swag.String("body"),
					Error: swag.String(err.Error()),
				},
			},
		)
	}

	return nil
}

// ValidateAndReturn validates the response payload and writes it as JSON.
func ValidateAndReturn(c echo.Context, code int, v interface{}) error {
	if validatable, ok := v.(Validatable); ok {
		if err := validatable.Validate(strfmt.Default); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
		}
	}

	return c.JSON(code, v)
}
