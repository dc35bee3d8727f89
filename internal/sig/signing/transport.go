package signing

import (
	"bytes"
	"io"
	"net/http"

	"github.com/kashguard/go-sigauth/internal/sig/request"
	"github.com/pkg/errors"
)

// Transport is an http.RoundTripper that signs every outbound request
// before delegating to the base transport. It lets Go clients talk to a
// verifying server without touching signature headers themselves.
type Transport struct {
	Base    http.RoundTripper
	Service Service
	Config  Config
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to buffer request body for signing")
		}
		_ = req.Body.Close()
		if len(b) > 0 {
			body = b
		}
	}

	headers := make(map[string]string, len(req.Header))
	for name, values := range req.Header {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}

	signable := request.New(request.Method(req.Method), req.URL.RequestURI(), headers, body)

	result, err := t.Service.Sign(req.Context(), signable, t.Config)
	if err != nil {
		return nil, err
	}

	out := req.Clone(req.Context())
	for name, value := range result.Headers {
		out.Header.Set(name, value)
	}
	if body != nil {
		out.Body = io.NopCloser(bytes.NewReader(body))
		out.ContentLength = int64(len(body))
	} else {
		out.Body = http.NoBody
	}

	return base.RoundTrip(out)
}
