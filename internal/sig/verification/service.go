package verification

import (
	"context"
	"strconv"

	"github.com/kashguard/go-sigauth/internal/sig"
	"github.com/kashguard/go-sigauth/internal/sig/audit"
	"github.com/kashguard/go-sigauth/internal/sig/canonical"
	"github.com/kashguard/go-sigauth/internal/sig/component"
	"github.com/kashguard/go-sigauth/internal/sig/digest"
	"github.com/kashguard/go-sigauth/internal/sig/engine"
	"github.com/kashguard/go-sigauth/internal/sig/keys"
	"github.com/kashguard/go-sigauth/internal/sig/policy"
	"github.com/kashguard/go-sigauth/internal/sig/replay"
	"github.com/kashguard/go-sigauth/internal/sig/request"
	"github.com/kashguard/go-sigauth/internal/sig/sigparams"
	"github.com/pkg/errors"
)

// Result is the outcome of one verification attempt. Reason and
// Diagnostics are internal-facing; API surfaces collapse any rejection
// into a generic unauthorized response so the taxonomy cannot be probed
// as an oracle.
type Result struct {
	Valid       bool
	Reason      sig.Reason
	KeyID       string
	Diagnostics map[string]string
}

// Service verifies signed requests under a named policy.
type Service interface {
	Verify(ctx context.Context, req *request.SignableRequest, pol policy.VerificationPolicy) (*Result, error)
}

type service struct {
	resolver    keys.Resolver
	guard       *replay.Guard
	auditLogger audit.Logger
}

// NewService creates a new verification service.
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewService(resolver keys.Resolver, guard *replay.Guard, auditLogger audit.Logger) (Service, error) {
	return &service{
		resolver:    resolver,
		guard:       guard,
		auditLogger: auditLogger,
	}, nil
}

// Verify runs the pipeline: parse headers, match covered components
// against the policy, resolve the key, recompute the canonical message
// over the actual received request, compare digests, verify the
// signature, then run the replay guard. Every stage short-circuits to
// rejection; no stage after a failure executes. The nonce is consumed
// only after the signature itself proved valid, so an attacker holding a
// captured-but-invalid signature cannot burn a victim's nonce.
//
// The returned Result is always non-nil. A non-nil error is from the
// closed taxonomy for protocol rejections, or an unwrapped infrastructure
// failure (store/resolver outage); either way the attempt is terminal and
// is never retried internally.
func (s *service) Verify(ctx context.Context, req *request.SignableRequest, pol policy.VerificationPolicy) (*Result, error) {
	result, err := s.verify(ctx, req, pol)

	outcome := "Success"
	if err != nil {
		outcome = "Failure"
	}
	s.auditLogger.LogEvent(ctx, &audit.Event{
		EventType: "Verify",
		KeyID:     result.KeyID,
		Operation: "verify",
		Result:    outcome,
		Reason:    string(result.Reason),
		Policy:    pol.Name,
	})

	return result, err
}

func (s *service) verify(ctx context.Context, req *request.SignableRequest, pol policy.VerificationPolicy) (*Result, error) {
	result := &Result{Diagnostics: make(map[string]string)}

	fail := func(err error) (*Result, error) {
		result.Valid = false
		result.Reason = sig.ReasonOf(err)
		result.Diagnostics["error"] = err.Error()
		return result, err
	}

	// Parse
	inputHeader, ok := req.Header(sigparams.HeaderSignatureInput)
	if !ok {
		return fail(errors.Wrap(sig.ErrFormat, "missing Signature-Input header"))
	}
	signatureHeader, ok := req.Header(sigparams.HeaderSignature)
	if !ok {
		return fail(errors.Wrap(sig.ErrFormat, "missing Signature header"))
	}

	input, err := sigparams.ParseSignatureInput(inputHeader)
	if err != nil {
		return fail(err)
	}
	result.KeyID = input.Params.KeyID

	sigName, signature, err := sigparams.ParseSignature(signatureHeader)
	if err != nil {
		return fail(err)
	}
	if sigName != input.Name {
		return fail(errors.Wrapf(sig.ErrFormat, "signature name %q does not match input name %q", sigName, input.Name))
	}

	if err := input.Params.Validate(); err != nil {
		return fail(err)
	}
	if !pol.AlgorithmAllowed(input.Params.Alg) {
		return fail(errors.Wrapf(sig.ErrFormat, "algorithm %q not allowed by policy %q", input.Params.Alg, pol.Name))
	}

	// ComponentMatch: the parsed covered components must exactly equal
	// the policy's required set, resolved against the actual request so
	// the body-present filtering matches the signer's.
	expected := component.Select(pol.RequiredComponents, req)
	if !component.Equal(input.Components, expected) {
		return fail(errors.Wrapf(sig.ErrComponentMismatch, "covered %v, policy requires %v", input.Components, expected))
	}

	// KeyResolve
	publicKey, err := s.resolver.Resolve(ctx, input.Params.KeyID)
	if err != nil {
		return fail(err)
	}

	// Recompute the canonical message locally over the received request.
	trailer := sigparams.Serialize(input.Components, input.Params)
	message, err := canonical.Build(input.Components, req, trailer)
	if err != nil {
		return fail(err)
	}

	// DigestCompare
	if contains(input.Components, component.ContentDigest) {
		if err := s.compareDigest(req); err != nil {
			return fail(err)
		}
	}

	// SignatureVerify
	valid, err := engine.Verify([]byte(message), signature, publicKey)
	if err != nil {
		return fail(err)
	}
	if !valid {
		return fail(errors.Wrapf(sig.ErrSignatureInvalid, "keyid %q", input.Params.KeyID))
	}

	// ReplayGuard
	if replay.IsWeakNonce(input.Params.Nonce) {
		if pol.RejectWeakNonces {
			return fail(errors.Wrapf(sig.ErrWeakNonce, "nonce %q", input.Params.Nonce))
		}
		result.Diagnostics["weak_nonce"] = input.Params.Nonce
	}

	window := replay.Window{
		MaxAge:        pol.MaxTimestampAge,
		SkewTolerance: pol.ClockSkewTolerance,
		EnforceNonce:  pol.NonceEnforcementEnabled,
	}
	if err := s.guard.Check(ctx, input.Params.KeyID, input.Params, window); err != nil {
		return fail(err)
	}

	result.Valid = true
	result.Diagnostics["created"] = strconv.FormatInt(input.Params.Created, 10)
	return result, nil
}

// compareDigest recomputes the body digest and compares it against the
// presented Content-Digest header.
func (s *service) compareDigest(req *request.SignableRequest) error {
	presentedValue, ok := req.Header(digest.HeaderName)
	if !ok {
		return errors.Wrap(sig.ErrMissingContentDigest, "content-digest covered but header missing")
	}

	presented, err := digest.Parse(presentedValue)
	if err != nil {
		return err
	}

	recomputed, err := digest.Compute(req.Body(), presented.Algorithm)
	if err != nil {
		return err
	}

	if !recomputed.Equal(presented) {
		return errors.Wrap(sig.ErrDigestMismatch, "recomputed body digest differs from presented digest")
	}

	return nil
}

func contains(components []string, name string) bool {
	for _, c := range components {
		if c == name {
			return true
		}
	}
	return false
}
