package types

import (
	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
)

// PostSignPayload describes a request to sign.
type PostSignPayload struct {
	KeyID          *string           `json:"key_id"`
	Method         *string           `json:"method"`
	TargetURI      *string           `json:"target_uri"`
	Headers        map[string]string `json:"headers,omitempty"`
	Body           strfmt.Base64     `json:"body,omitempty"`
	CoveredHeaders []string          `json:"covered_headers,omitempty"`
	ContentDigest  bool              `json:"content_digest,omitempty"`
}

// Validate validates this payload.
func (p *PostSignPayload) Validate(_ strfmt.Registry) error {
	if p.KeyID == nil || *p.KeyID == "" {
		return errors.Required("key_id", "body", nil)
	}
	if p.Method == nil || *p.Method == "" {
		return errors.Required("method", "body", nil)
	}
	if p.TargetURI == nil || *p.TargetURI == "" {
		return errors.Required("target_uri", "body", nil)
	}
	return nil
}

// PostSignResponse carries the headers to attach to the signed request.
type PostSignResponse struct {
	SignatureInput   *string           `json:"signature_input"`
	Signature        *string           `json:"signature"`
	Headers          map[string]string `json:"headers"`
	CanonicalMessage string            `json:"canonical_message,omitempty"`
}

// PostVerifyPayload describes a received request to verify.
type PostVerifyPayload struct {
	Method    *string           `json:"method"`
	TargetURI *string           `json:"target_uri"`
	Headers   map[string]string `json:"headers"`
	Body      strfmt.Base64     `json:"body,omitempty"`
	Policy    string            `json:"policy,omitempty"`
}

// Validate validates this payload.
func (p *PostVerifyPayload) Validate(_ strfmt.Registry) error {
	if p.Method == nil || *p.Method == "" {
		return errors.Required("method", "body", nil)
	}
	if p.TargetURI == nil || *p.TargetURI == "" {
		return errors.Required("target_uri", "body", nil)
	}
	if len(p.Headers) == 0 {
		return errors.Required("headers", "body", nil)
	}
	return nil
}

// PostVerifyResponse reports a verification outcome. It intentionally
// carries no failure reason; the specific rejection cause stays in
// internal logs.
type PostVerifyResponse struct {
	Valid  *bool  `json:"valid"`
	KeyID  string `json:"key_id,omitempty"`
	Policy string `json:"policy"`
}
