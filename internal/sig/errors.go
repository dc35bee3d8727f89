package sig

import (
	"github.com/pkg/errors"
)

var (
	ErrFormat               = errors.New("malformed signature material")
	ErrUnknownKey           = errors.New("unknown signing key")
	ErrComponentMismatch    = errors.New("covered components do not match policy")
	ErrMissingContentDigest = errors.New("content digest required but missing")
	ErrDigestMismatch       = errors.New("content digest mismatch")
	ErrSignatureInvalid     = errors.New("signature verification failed")
	ErrTimestampOutOfWindow = errors.New("created timestamp outside freshness window")
	ErrNonceReused          = errors.New("nonce already consumed")
	ErrWeakNonce            = errors.New("nonce entropy below threshold")
	ErrCryptoUnavailable    = errors.New("signing backend unavailable")
)

// Reason is the stable machine-readable code attached to a verification
// outcome. It is logged internally and never returned to API callers,
// which only ever see a generic unauthorized response.
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonFormat               Reason = "format_error"
	ReasonUnknownKey           Reason = "unknown_key"
	ReasonComponentMismatch    Reason = "component_mismatch"
	ReasonMissingContentDigest Reason = "missing_content_digest"
	ReasonDigestMismatch       Reason = "digest_mismatch"
	ReasonSignatureInvalid     Reason = "signature_invalid"
	ReasonTimestampOutOfWindow Reason = "timestamp_out_of_window"
	ReasonNonceReused          Reason = "nonce_reused"
	ReasonWeakNonce            Reason = "weak_nonce"
	ReasonCryptoUnavailable    Reason = "crypto_unavailable"
	ReasonInternal             Reason = "internal_error"
)

// ReasonOf maps an error from the verification pipeline onto its reason
// code. Unrecognized errors (store outages, resolver failures) map to
// ReasonInternal.
func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, ErrFormat):
		return ReasonFormat
	case errors.Is(err, ErrUnknownKey):
		return ReasonUnknownKey
	case errors.Is(err, ErrComponentMismatch):
		return ReasonComponentMismatch
	case errors.Is(err, ErrMissingContentDigest):
		return ReasonMissingContentDigest
	case errors.Is(err, ErrDigestMismatch):
		return ReasonDigestMismatch
	case errors.Is(err, ErrSignatureInvalid):
		return ReasonSignatureInvalid
	case errors.Is(err, ErrTimestampOutOfWindow):
		return ReasonTimestampOutOfWindow
	case errors.Is(err, ErrNonceReused):
		return ReasonNonceReused
	case errors.Is(err, ErrWeakNonce):
		return ReasonWeakNonce
	case errors.Is(err, ErrCryptoUnavailable):
		return ReasonCryptoUnavailable
	default:
		return ReasonInternal
	}
}
