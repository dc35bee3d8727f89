package component_test

import (
	"testing"

	"github.com/kashguard/go-sigauth/internal/sig/component"
	"github.com/kashguard/go-sigauth/internal/sig/request"
	"github.com/stretchr/testify/assert"
)

func TestSelectOrderIsStable(t *testing.T) {
	req := request.New(request.MethodPost, "/data", map[string]string{
		"X-Request-ID": "abc",
		"Date":         "today",
	}, []byte("body"))

	selected := component.Select(component.Components{
		Method:        true,
		TargetURI:     true,
		ContentDigest: true,
		Headers:       []string{"X-Request-ID", "Date"},
	}, req)

	assert.Equal(t, []string{"@method", "@target-uri", "content-digest", "x-request-id", "date"}, selected)
}

func TestSelectDropsContentDigestWithoutBody(t *testing.T) {
	req := request.New(request.MethodGet, "/data", nil, nil)

	selected := component.Select(component.Components{
		Method:        true,
		TargetURI:     true,
		ContentDigest: true,
	}, req)

	assert.Equal(t, []string{"@method", "@target-uri"}, selected)
}

func TestSelectKeepsContentDigestForEmptyBody(t *testing.T) {
	// An empty but present body is still a body.
	req := request.New(request.MethodPost, "/data", nil, []byte{})

	selected := component.Select(component.Components{
		Method:        true,
		ContentDigest: true,
	}, req)

	assert.Equal(t, []string{"@method", "content-digest"}, selected)
}

func TestSelectLowercasesHeaderNames(t *testing.T) {
	req := request.New(request.MethodGet, "/data", map[string]string{"Date": "today"}, nil)

	selected := component.Select(component.Components{Headers: []string{" Date "}}, req)

	assert.Equal(t, []string{"date"}, selected)
}

func TestEqual(t *testing.T) {
	assert.True(t, component.Equal([]string{"@method", "date"}, []string{"@method", "date"}))
	assert.False(t, component.Equal([]string{"@method", "date"}, []string{"date", "@method"}))
	assert.False(t, component.Equal([]string{"@method"}, []string{"@method", "date"}))
	assert.True(t, component.Equal(nil, []string{}))
}
