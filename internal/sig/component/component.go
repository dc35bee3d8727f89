package component

import (
	"strings"

	"github.com/kashguard/go-sigauth/internal/sig/request"
)

// Derived component identifiers defined by RFC 9421, plus the
// content-digest header treated as a first-class coverable component.
const (
	Method          = "@method"
	TargetURI       = "@target-uri"
	ContentDigest   = "content-digest"
	SignatureParams = "@signature-params"
)

// Components declares which parts of a request a signature covers.
// Headers is an ordered list; the order is significant and is reproduced
// identically by signer and verifier.
type Components struct {
	Method        bool     `yaml:"method"`
	TargetURI     bool     `yaml:"target_uri"`
	ContentDigest bool     `yaml:"content_digest"`
	Headers       []string `yaml:"headers"`
}

// Select resolves the declared components against an actual request into
// the ordered list of component identifiers to sign. The content-digest
// component is included only when the flag is set and the request carries
// a body; a set flag with no body is silently dropped, never an error —
// covered components are always whatever was actually signable.
func Select(c Components, req *request.SignableRequest) []string {
	out := make([]string, 0, 3+len(c.Headers))

	if c.Method {
		out = append(out, Method)
	}
	if c.TargetURI {
		out = append(out, TargetURI)
	}
	if c.ContentDigest && req.HasBody() {
		out = append(out, ContentDigest)
	}
	for _, name := range c.Headers {
		out = append(out, strings.ToLower(strings.TrimSpace(name)))
	}

	return out
}

// Equal reports whether two ordered component lists are identical.
func Equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
