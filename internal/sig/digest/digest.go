package digest

import (
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/kashguard/go-sigauth/internal/sig"
	"github.com/pkg/errors"
)

// HeaderName is the HTTP header carrying the body digest.
const HeaderName = "Content-Digest"

// Algorithm identifies a content digest hash.
type Algorithm string

const (
	AlgorithmSHA256 Algorithm = "sha-256"
	AlgorithmSHA512 Algorithm = "sha-512"
)

// ContentDigest is a computed body digest: the algorithm tag plus the
// base64 encoding of the raw hash.
type ContentDigest struct {
	Algorithm Algorithm
	Value     string
}

// Compute hashes the body with the selected algorithm.
func Compute(body []byte, alg Algorithm) (ContentDigest, error) {
	var raw []byte

	switch alg {
	case AlgorithmSHA256:
		sum := sha256.Sum256(body)
		raw = sum[:]
	case AlgorithmSHA512:
		sum := sha512.Sum512(body)
		raw = sum[:]
	default:
		return ContentDigest{}, errors.Wrapf(sig.ErrFormat, "unsupported digest algorithm %q", alg)
	}

	return ContentDigest{
		Algorithm: alg,
		Value:     base64.StdEncoding.EncodeToString(raw),
	}, nil
}

// HeaderValue renders the digest in wire form: "<algo>=:<base64>:".
func (d ContentDigest) HeaderValue() string {
	return string(d.Algorithm) + "=:" + d.Value + ":"
}

// Equal compares two digests in constant time.
func (d ContentDigest) Equal(other ContentDigest) bool {
	if d.Algorithm != other.Algorithm {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(d.Value), []byte(other.Value)) == 1
}

// Parse decodes a Content-Digest header value.
func Parse(value string) (ContentDigest, error) {
	value = strings.TrimSpace(value)

	idx := strings.Index(value, "=:")
	if idx <= 0 || !strings.HasSuffix(value, ":") {
		return ContentDigest{}, errors.Wrapf(sig.ErrFormat, "invalid content digest value %q", value)
	}

	alg := Algorithm(value[:idx])
	if alg != AlgorithmSHA256 && alg != AlgorithmSHA512 {
		return ContentDigest{}, errors.Wrapf(sig.ErrFormat, "unsupported digest algorithm %q", alg)
	}

	encoded := value[idx+2 : len(value)-1]
	if _, err := base64.StdEncoding.DecodeString(encoded); err != nil {
		return ContentDigest{}, errors.Wrap(sig.ErrFormat, "content digest value is not base64")
	}

	return ContentDigest{Algorithm: alg, Value: encoded}, nil
}
