package types

// Public error type discriminators returned to API callers.
var (
	PublicHTTPErrorTypeGeneric = "generic"
)

// PublicHTTPError is the wire shape of an API error.
type PublicHTTPError struct {
	Code  *int64  `json:"code"`
	Type  *string `json:"type"`
	Title *string `json:"title"`
}

// HTTPValidationErrorDetail pinpoints one invalid field.
type HTTPValidationErrorDetail struct {
	Key   *string `json:"key"`
	In    *string `json:"in"`
	Error *string `json:"error"`
}

// PublicHTTPValidationError extends PublicHTTPError with per-field
// details.
type PublicHTTPValidationError struct {
	PublicHTTPError
	ValidationErrors []*HTTPValidationErrorDetail `json:"validationErrors"`
}
