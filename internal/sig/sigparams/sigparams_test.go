package sigparams_test

import (
	"testing"

	"github.com/go-openapi/strfmt"
	sigerrors "github.com/kashguard/go-sigauth/internal/sig"
	"github.com/kashguard/go-sigauth/internal/sig/sigparams"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() sigparams.Params {
	return sigparams.Params{
		Created: 1700000000,
		KeyID:   "k1",
		Alg:     sigparams.AlgorithmEd25519,
		Nonce:   "11111111-1111-4111-8111-111111111111",
	}
}

func TestSerialize(t *testing.T) {
	serialized := sigparams.Serialize([]string{"@method", "@target-uri"}, validParams())

	assert.Equal(t,
		`("@method" "@target-uri");created=1700000000;keyid="k1";alg="ed25519";nonce="11111111-1111-4111-8111-111111111111"`,
		serialized)
}

func TestParseSignatureInputRoundTrip(t *testing.T) {
	components := []string{"@method", "@target-uri", "content-digest"}
	params := validParams()

	value := sigparams.DefaultSignatureName + "=" + sigparams.Serialize(components, params)

	input, err := sigparams.ParseSignatureInput(value)
	require.NoError(t, err)

	assert.Equal(t, sigparams.DefaultSignatureName, input.Name)
	assert.Equal(t, components, input.Components)
	assert.Equal(t, params, input.Params)
}

func TestParseSignatureInputRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"empty", ""},
		{"no component list", "sig1=created=1"},
		{"unterminated list", `sig1=("@method"`},
		{"empty component list", `sig1=();created=1700000000;keyid="k1";alg="ed25519";nonce="11111111-1111-4111-8111-111111111111"`},
		{"unquoted component", `sig1=(@method);created=1700000000;keyid="k1";alg="ed25519";nonce="11111111-1111-4111-8111-111111111111"`},
		{"missing created", `sig1=("@method");keyid="k1";alg="ed25519";nonce="11111111-1111-4111-8111-111111111111"`},
		{"missing keyid", `sig1=("@method");created=1700000000;alg="ed25519";nonce="11111111-1111-4111-8111-111111111111"`},
		{"missing alg", `sig1=("@method");created=1700000000;keyid="k1";nonce="11111111-1111-4111-8111-111111111111"`},
		{"missing nonce", `sig1=("@method");created=1700000000;keyid="k1";alg="ed25519"`},
		{"duplicate param", `sig1=("@method");created=1700000000;created=1700000001;keyid="k1";alg="ed25519";nonce="11111111-1111-4111-8111-111111111111"`},
		{"unknown param", `sig1=("@method");created=1700000000;keyid="k1";alg="ed25519";nonce="11111111-1111-4111-8111-111111111111";expires=1`},
		{"unquoted keyid", `sig1=("@method");created=1700000000;keyid=k1;alg="ed25519";nonce="11111111-1111-4111-8111-111111111111"`},
		{"created not integer", `sig1=("@method");created=soon;keyid="k1";alg="ed25519";nonce="11111111-1111-4111-8111-111111111111"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sigparams.ParseSignatureInput(tt.value)
			require.Error(t, err)
			assert.True(t, errors.Is(err, sigerrors.ErrFormat))
		})
	}
}

func TestParamsValidate(t *testing.T) {
	assert.NoError(t, validParams().Validate())

	tooOld := validParams()
	tooOld.Created = sigparams.CreatedMin - 1
	assert.True(t, errors.Is(tooOld.Validate(), sigerrors.ErrFormat))

	tooFar := validParams()
	tooFar.Created = sigparams.CreatedMax + 1
	assert.True(t, errors.Is(tooFar.Validate(), sigerrors.ErrFormat))

	noKey := validParams()
	noKey.KeyID = ""
	assert.True(t, errors.Is(noKey.Validate(), sigerrors.ErrFormat))

	badAlg := validParams()
	badAlg.Alg = "rsa-pss-sha512"
	assert.True(t, errors.Is(badAlg.Validate(), sigerrors.ErrFormat))

	shortNonce := validParams()
	shortNonce.Nonce = "short"
	assert.True(t, errors.Is(shortNonce.Validate(), sigerrors.ErrFormat))
}

func TestNewNonceIsUUID4(t *testing.T) {
	nonce, err := sigparams.NewNonce()
	require.NoError(t, err)

	assert.True(t, strfmt.IsUUID4(nonce))
	assert.GreaterOrEqual(t, len(nonce), sigparams.MinNonceLength)

	again, err := sigparams.NewNonce()
	require.NoError(t, err)
	assert.NotEqual(t, nonce, again)
}

func TestSignatureRoundTrip(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0xff}

	value := sigparams.FormatSignature("sig1", raw)
	assert.Equal(t, "sig1=:AQID/w==:", value)

	name, decoded, err := sigparams.ParseSignature(value)
	require.NoError(t, err)
	assert.Equal(t, "sig1", name)
	assert.Equal(t, raw, decoded)
}

func TestParseSignatureRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"empty", ""},
		{"no name", "=:AQID:"},
		{"not colon wrapped", "sig1=AQID"},
		{"not base64", "sig1=:!!!:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := sigparams.ParseSignature(tt.value)
			require.Error(t, err)
			assert.True(t, errors.Is(err, sigerrors.ErrFormat))
		})
	}
}
