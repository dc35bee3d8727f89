package signing_test

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/kashguard/go-sigauth/internal/sig/audit"
	"github.com/kashguard/go-sigauth/internal/sig/digest"
	"github.com/kashguard/go-sigauth/internal/sig/signing"
	"github.com/kashguard/go-sigauth/internal/sig/sigparams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestTransportSignsOutboundRequests(t *testing.T) {
	clock := time2.NewMockClock(time.Unix(1700000000, 0))
	service, err := signing.NewService(clock, audit.NewLogger())
	require.NoError(t, err)

	var captured *http.Request
	var capturedBody string

	transport := &signing.Transport{
		Base: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			captured = req
			b, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			capturedBody = string(b)
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
		}),
		Service: service,
		Config:  testConfig(),
	}

	client := &http.Client{Transport: transport}

	req, err := http.NewRequest(http.MethodPost, "https://api.example.com/submit", strings.NewReader(`{"hello":"world"}`))
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NotNil(t, captured)
	assert.NotEmpty(t, captured.Header.Get(sigparams.HeaderSignatureInput))
	assert.NotEmpty(t, captured.Header.Get(sigparams.HeaderSignature))

	// body passes through untouched
	assert.Equal(t, `{"hello":"world"}`, capturedBody)
}

func TestTransportAttachesContentDigest(t *testing.T) {
	clock := time2.NewMockClock(time.Unix(1700000000, 0))
	service, err := signing.NewService(clock, audit.NewLogger())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Components.ContentDigest = true

	var captured *http.Request

	transport := &signing.Transport{
		Base: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			captured = req
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
		}),
		Service: service,
		Config:  cfg,
	}

	req, err := http.NewRequest(http.MethodPost, "https://api.example.com/submit", strings.NewReader(`{"hello":"world"}`))
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NotNil(t, captured)
	assert.Equal(t, "sha-256=:k6I5cakU5erL8KjSUVTNownDwccvu5kU1Hxg88toFYg=:", captured.Header.Get(digest.HeaderName))
}

func TestTransportBodylessRequest(t *testing.T) {
	clock := time2.NewMockClock(time.Unix(1700000000, 0))
	service, err := signing.NewService(clock, audit.NewLogger())
	require.NoError(t, err)

	var captured *http.Request

	transport := &signing.Transport{
		Base: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			captured = req
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
		}),
		Service: service,
		Config:  testConfig(),
	}

	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/data?page=2", nil)
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NotNil(t, captured)

	input, err := sigparams.ParseSignatureInput(captured.Header.Get(sigparams.HeaderSignatureInput))
	require.NoError(t, err)
	assert.Equal(t, []string{"@method", "@target-uri"}, input.Components)
	assert.Empty(t, captured.Header.Get(digest.HeaderName))
}
