package signing

import (
	"context"

	"github.com/dropbox/godropbox/time2"
	"github.com/kashguard/go-sigauth/internal/sig"
	"github.com/kashguard/go-sigauth/internal/sig/audit"
	"github.com/kashguard/go-sigauth/internal/sig/canonical"
	"github.com/kashguard/go-sigauth/internal/sig/component"
	"github.com/kashguard/go-sigauth/internal/sig/digest"
	"github.com/kashguard/go-sigauth/internal/sig/engine"
	"github.com/kashguard/go-sigauth/internal/sig/request"
	"github.com/kashguard/go-sigauth/internal/sig/sigparams"
	"github.com/pkg/errors"
)

// Config describes one signing operation: the key, the components to
// cover, and optional overrides for the nonce and created generators.
// Overrides exist for testability and for callers that manage their own
// nonce space; both default to the canonical generators.
type Config struct {
	Algorithm  string
	KeyID      string
	PrivateKey []byte // 32-byte Ed25519 seed
	Components component.Components

	DigestAlgorithm digest.Algorithm // defaults to sha-256

	Nonce   func() (string, error)
	Created func() int64
}

// Result is a completed signature: the two signature headers, the full
// header set to attach (including Content-Digest when one was computed),
// and the canonical message that was signed. The canonical message is
// kept for audit and debugging and is never transmitted.
type Result struct {
	SignatureInput   string
	Signature        string
	Headers          map[string]string
	CanonicalMessage string
}

// Service signs requests.
type Service interface {
	Sign(ctx context.Context, req *request.SignableRequest, cfg Config) (*Result, error)
}

type service struct {
	clock       time2.Clock
	auditLogger audit.Logger
}

// NewService creates a new signing service.
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewService(clock time2.Clock, auditLogger audit.Logger) (Service, error) {
	return &service{
		clock:       clock,
		auditLogger: auditLogger,
	}, nil
}

// Sign is a pure, synchronous computation with no I/O; it is safe to call
// concurrently since every call operates on its own request and config.
func (s *service) Sign(ctx context.Context, req *request.SignableRequest, cfg Config) (*Result, error) {
	if cfg.Algorithm != sigparams.AlgorithmEd25519 {
		return nil, errors.Wrapf(sig.ErrCryptoUnavailable, "unsupported signing algorithm %q", cfg.Algorithm)
	}
	if len(cfg.PrivateKey) != engine.SeedSize {
		return nil, errors.Wrapf(sig.ErrCryptoUnavailable, "private key must be %d bytes", engine.SeedSize)
	}

	components := component.Select(cfg.Components, req)

	headers := make(map[string]string, 3)
	signed := req

	if cfg.Components.ContentDigest && req.HasBody() {
		alg := cfg.DigestAlgorithm
		if alg == "" {
			alg = digest.AlgorithmSHA256
		}

		d, err := digest.Compute(req.Body(), alg)
		if err != nil {
			return nil, errors.Wrap(sig.ErrMissingContentDigest, err.Error())
		}

		headers[digest.HeaderName] = d.HeaderValue()
		signed = req.WithHeader(digest.HeaderName, d.HeaderValue())
	}

	params, err := s.generateParams(cfg)
	if err != nil {
		return nil, err
	}

	trailer := sigparams.Serialize(components, params)

	message, err := canonical.Build(components, signed, trailer)
	if err != nil {
		return nil, err
	}

	signature, err := engine.Sign([]byte(message), cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	signatureInput := sigparams.DefaultSignatureName + "=" + trailer
	signatureHeader := sigparams.FormatSignature(sigparams.DefaultSignatureName, signature)

	headers[sigparams.HeaderSignatureInput] = signatureInput
	headers[sigparams.HeaderSignature] = signatureHeader

	s.auditLogger.LogEvent(ctx, &audit.Event{
		EventType: "Sign",
		KeyID:     cfg.KeyID,
		Operation: "sign",
		Result:    "Success",
	})

	return &Result{
		SignatureInput:   signatureInput,
		Signature:        signatureHeader,
		Headers:          headers,
		CanonicalMessage: message,
	}, nil
}

// generateParams produces a fresh created/nonce pair. A nonce and created
// are never reused across two signatures from the same key: the nonce is
// random per call and created always reflects the current clock unless
// the caller overrides both deliberately.
func (s *service) generateParams(cfg Config) (sigparams.Params, error) {
	created := s.clock.Now().Unix()
	if cfg.Created != nil {
		created = cfg.Created()
	}

	var nonce string
	var err error
	if cfg.Nonce != nil {
		nonce, err = cfg.Nonce()
	} else {
		nonce, err = sigparams.NewNonce()
	}
	if err != nil {
		return sigparams.Params{}, err
	}

	params := sigparams.Params{
		Created: created,
		KeyID:   cfg.KeyID,
		Alg:     cfg.Algorithm,
		Nonce:   nonce,
	}

	if err := params.Validate(); err != nil {
		return sigparams.Params{}, err
	}

	return params, nil
}
