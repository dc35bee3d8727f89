package canonical

import (
	"net/url"
	"strings"

	"github.com/kashguard/go-sigauth/internal/sig"
	"github.com/kashguard/go-sigauth/internal/sig/component"
	"github.com/kashguard/go-sigauth/internal/sig/request"
	"github.com/pkg/errors"
)

// Build renders the canonical message (the signature base) for an ordered
// component list. Each component becomes one line of the form
//
//	"<name>": <value>
//
// followed by exactly one "@signature-params" line holding the serialized
// signature parameters. Lines are joined with a single \n and there is no
// trailing newline.
//
// Build is a pure function: identical inputs always produce byte-identical
// output. A covered header that is absent from the request is a hard
// format error; an empty value is never substituted, since a stripped
// header must invalidate the signature.
func Build(components []string, req *request.SignableRequest, signatureParams string) (string, error) {
	var b strings.Builder

	for _, c := range components {
		value, err := componentValue(c, req)
		if err != nil {
			return "", err
		}

		b.WriteByte('"')
		b.WriteString(c)
		b.WriteString(`": `)
		b.WriteString(value)
		b.WriteByte('\n')
	}

	b.WriteByte('"')
	b.WriteString(component.SignatureParams)
	b.WriteString(`": `)
	b.WriteString(signatureParams)

	return b.String(), nil
}

func componentValue(c string, req *request.SignableRequest) (string, error) {
	switch c {
	case component.Method:
		return string(req.Method()), nil
	case component.TargetURI:
		return targetURIValue(req.TargetURI())
	default:
		value, ok := req.Header(c)
		if !ok {
			return "", errors.Wrapf(sig.ErrFormat, "covered header %q not present in request", c)
		}
		return value, nil
	}
}

// targetURIValue reduces the target URI to path plus query, dropping
// scheme, host and fragment so both sides canonicalize identically no
// matter how the URI reached them.
func targetURIValue(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Wrapf(sig.ErrFormat, "unparseable target uri %q", raw)
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	return path, nil
}
