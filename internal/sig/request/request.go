package request

import (
	"io"
	"net/http"
	"strings"
)

// Method is the HTTP verb of a signable request.
type Method string

const (
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodOptions Method = "OPTIONS"
)

// SignableRequest is an immutable view of the parts of an HTTP request
// that can be covered by a signature: method, target URI, headers and an
// optional body. Header lookup is case-insensitive. All inputs are copied
// on construction, so the view stays stable even if the caller keeps
// mutating its own maps and buffers.
type SignableRequest struct {
	method    Method
	targetURI string
	headers   map[string]string // keyed by lower-cased name
	body      []byte
	hasBody   bool
}

// New builds a SignableRequest from its parts. A nil body means "no body";
// an empty non-nil body is still a body and will be covered by a content
// digest if one is requested.
func New(method Method, targetURI string, headers map[string]string, body []byte) *SignableRequest {
	r := &SignableRequest{
		method:    Method(strings.ToUpper(string(method))),
		targetURI: targetURI,
		headers:   make(map[string]string, len(headers)),
	}

	for name, value := range headers {
		r.headers[strings.ToLower(strings.TrimSpace(name))] = value
	}

	if body != nil {
		r.body = make([]byte, len(body))
		copy(r.body, body)
		r.hasBody = true
	}

	return r
}

// FromHTTP snapshots a server-side *http.Request into a SignableRequest.
// The request body is fully read and handed back on r.Body so downstream
// handlers can still consume it.
func FromHTTP(r *http.Request) (*SignableRequest, error) {
	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}

	var body []byte
	if r.Body != nil && r.Body != http.NoBody {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(b)))
		if len(b) > 0 {
			body = b
		}
	}

	return New(Method(r.Method), r.URL.RequestURI(), headers, body), nil
}

func (r *SignableRequest) Method() Method {
	return r.method
}

func (r *SignableRequest) TargetURI() string {
	return r.targetURI
}

// Header looks up a header value by name, case-insensitively. The second
// return reports whether the header is present at all, so callers can
// distinguish an empty value from an absent header.
func (r *SignableRequest) Header(name string) (string, bool) {
	v, ok := r.headers[strings.ToLower(strings.TrimSpace(name))]
	return v, ok
}

// HasBody reports whether the request carries a body.
func (r *SignableRequest) HasBody() bool {
	return r.hasBody
}

// Body returns a copy of the body bytes, or nil when there is none.
func (r *SignableRequest) Body() []byte {
	if !r.hasBody {
		return nil
	}
	b := make([]byte, len(r.body))
	copy(b, r.body)
	return b
}

// WithHeader returns a new SignableRequest with one header added or
// replaced. The receiver is left untouched.
func (r *SignableRequest) WithHeader(name, value string) *SignableRequest {
	headers := make(map[string]string, len(r.headers)+1)
	for k, v := range r.headers {
		headers[k] = v
	}
	headers[strings.ToLower(strings.TrimSpace(name))] = value

	out := &SignableRequest{
		method:    r.method,
		targetURI: r.targetURI,
		headers:   headers,
		hasBody:   r.hasBody,
	}
	if r.hasBody {
		out.body = make([]byte, len(r.body))
		copy(out.body, r.body)
	}
	return out
}
