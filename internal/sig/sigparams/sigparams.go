package sigparams

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/kashguard/go-sigauth/internal/sig"
	"github.com/pkg/errors"
)

const (
	HeaderSignatureInput = "Signature-Input"
	HeaderSignature      = "Signature"

	// AlgorithmEd25519 is the only signature algorithm this service
	// produces or accepts.
	AlgorithmEd25519 = "ed25519"

	DefaultSignatureName = "sig1"

	// Sanity bounds on the created parameter, independent of any policy
	// window: 2000-01-01T00:00:00Z .. 2100-01-01T00:00:00Z. Values
	// outside this range mean corrupted input and are rejected early.
	CreatedMin = 946684800
	CreatedMax = 4102444800

	// MinNonceLength is the floor for externally-supplied nonces.
	// Generated nonces are UUIDv4-shaped and always longer.
	MinNonceLength = 16
)

// Params are the signature parameters embedded in the
// "@signature-params" trailer and the Signature-Input header.
type Params struct {
	Created int64
	KeyID   string
	Alg     string
	Nonce   string
}

// SignatureInput is a parsed Signature-Input header value: the signature
// name, the ordered covered-component list, and the four parameters.
type SignatureInput struct {
	Name       string
	Components []string
	Params     Params
}

// NewNonce returns a fresh cryptographically-random nonce in canonical
// UUIDv4 form.
func NewNonce() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", errors.Wrap(sig.ErrCryptoUnavailable, "nonce generation failed")
	}
	return u.String(), nil
}

// Validate enforces the structural invariants on signature parameters:
// created within the sane absolute range, a non-empty keyid, the fixed
// algorithm, and a nonce of at least MinNonceLength characters.
func (p Params) Validate() error {
	if p.Created < CreatedMin || p.Created > CreatedMax {
		return errors.Wrapf(sig.ErrFormat, "created timestamp %d outside sane range", p.Created)
	}
	if p.KeyID == "" {
		return errors.Wrap(sig.ErrFormat, "empty keyid")
	}
	if p.Alg != AlgorithmEd25519 {
		return errors.Wrapf(sig.ErrFormat, "unsupported algorithm %q", p.Alg)
	}
	if len(p.Nonce) < MinNonceLength {
		return errors.Wrapf(sig.ErrFormat, "nonce shorter than %d characters", MinNonceLength)
	}
	return nil
}

// Serialize renders the signature parameters in wire form:
//
//	("@method" "@target-uri");created=<n>;keyid="<id>";alg="<alg>";nonce="<nonce>"
//
// The same string is used as the "@signature-params" value of the
// canonical message and, prefixed with the signature name, as the
// Signature-Input header value.
func Serialize(components []string, p Params) string {
	var b strings.Builder

	b.WriteByte('(')
	for i, c := range components {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('"')
		b.WriteString(c)
		b.WriteByte('"')
	}
	b.WriteByte(')')

	b.WriteString(";created=")
	b.WriteString(strconv.FormatInt(p.Created, 10))
	b.WriteString(`;keyid="`)
	b.WriteString(p.KeyID)
	b.WriteString(`";alg="`)
	b.WriteString(p.Alg)
	b.WriteString(`";nonce="`)
	b.WriteString(p.Nonce)
	b.WriteByte('"')

	return b.String()
}

// ParseSignatureInput parses a Signature-Input header value of the form
// <name>=(<quoted component list>);created=<n>;keyid="...";alg="...";nonce="...".
// Absence of any of the four required parameters is a format error.
func ParseSignatureInput(value string) (*SignatureInput, error) {
	value = strings.TrimSpace(value)

	eq := strings.Index(value, "=(")
	if eq <= 0 {
		return nil, errors.Wrap(sig.ErrFormat, "signature input missing component list")
	}
	name := value[:eq]

	end := strings.Index(value, ")")
	if end < eq {
		return nil, errors.Wrap(sig.ErrFormat, "signature input has unterminated component list")
	}

	components, err := parseComponentList(value[eq+2 : end])
	if err != nil {
		return nil, err
	}

	params, err := parseParams(value[end+1:])
	if err != nil {
		return nil, err
	}

	return &SignatureInput{
		Name:       name,
		Components: components,
		Params:     params,
	}, nil
}

func parseComponentList(raw string) ([]string, error) {
	tokens := strings.Fields(strings.TrimSpace(raw))
	components := make([]string, 0, len(tokens))

	for _, token := range tokens {
		if len(token) < 3 || token[0] != '"' || token[len(token)-1] != '"' {
			return nil, errors.Wrapf(sig.ErrFormat, "component %q is not quoted", token)
		}
		components = append(components, token[1:len(token)-1])
	}

	if len(components) == 0 {
		return nil, errors.Wrap(sig.ErrFormat, "empty covered component list")
	}

	return components, nil
}

func parseParams(raw string) (Params, error) {
	var p Params
	seen := map[string]bool{}

	for _, segment := range strings.Split(raw, ";") {
		if segment == "" {
			continue
		}

		key, value, found := strings.Cut(segment, "=")
		if !found {
			return Params{}, errors.Wrapf(sig.ErrFormat, "malformed parameter %q", segment)
		}
		if seen[key] {
			return Params{}, errors.Wrapf(sig.ErrFormat, "duplicate parameter %q", key)
		}
		seen[key] = true

		switch key {
		case "created":
			created, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Params{}, errors.Wrap(sig.ErrFormat, "created is not an integer")
			}
			p.Created = created
		case "keyid", "alg", "nonce":
			unquoted, ok := unquote(value)
			if !ok {
				return Params{}, errors.Wrapf(sig.ErrFormat, "parameter %q is not quoted", key)
			}
			switch key {
			case "keyid":
				p.KeyID = unquoted
			case "alg":
				p.Alg = unquoted
			case "nonce":
				p.Nonce = unquoted
			}
		default:
			return Params{}, errors.Wrapf(sig.ErrFormat, "unexpected parameter %q", key)
		}
	}

	for _, required := range []string{"created", "keyid", "alg", "nonce"} {
		if !seen[required] {
			return Params{}, errors.Wrapf(sig.ErrFormat, "missing required parameter %q", required)
		}
	}

	return p, nil
}

func unquote(v string) (string, bool) {
	if len(v) < 2 || v[0] != '"' || v[len(v)-1] != '"' {
		return v, false
	}
	return v[1 : len(v)-1], true
}

// FormatSignature renders a Signature header value: <name>=:<base64>:.
func FormatSignature(name string, signature []byte) string {
	return name + "=:" + base64.StdEncoding.EncodeToString(signature) + ":"
}

// ParseSignature decodes a Signature header value back into the
// signature name and raw signature bytes.
func ParseSignature(value string) (string, []byte, error) {
	value = strings.TrimSpace(value)

	name, rest, found := strings.Cut(value, "=")
	if !found || name == "" {
		return "", nil, errors.Wrap(sig.ErrFormat, "signature header missing name")
	}
	if len(rest) < 2 || rest[0] != ':' || rest[len(rest)-1] != ':' {
		return "", nil, errors.Wrap(sig.ErrFormat, "signature value is not colon-wrapped")
	}

	raw, err := base64.StdEncoding.DecodeString(rest[1 : len(rest)-1])
	if err != nil {
		return "", nil, errors.Wrap(sig.ErrFormat, "signature value is not base64")
	}

	return name, raw, nil
}
