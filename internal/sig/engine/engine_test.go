package engine_test

import (
	"bytes"
	"testing"

	sigerrors "github.com/kashguard/go-sigauth/internal/sig"
	"github.com/kashguard/go-sigauth/internal/sig/engine"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeed() []byte {
	return bytes.Repeat([]byte{0x42}, engine.SeedSize)
}

func TestSignAndVerify(t *testing.T) {
	message := []byte("\"@method\": GET\n\"@signature-params\": (...)")

	signature, err := engine.Sign(message, testSeed())
	require.NoError(t, err)
	assert.Len(t, signature, engine.SignatureSize)

	publicKey, err := engine.PublicKeyFromSeed(testSeed())
	require.NoError(t, err)

	valid, err := engine.Verify(message, signature, publicKey)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestSignIsDeterministic(t *testing.T) {
	message := []byte("same message")

	first, err := engine.Sign(message, testSeed())
	require.NoError(t, err)
	second, err := engine.Sign(message, testSeed())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	signature, err := engine.Sign([]byte("original"), testSeed())
	require.NoError(t, err)

	publicKey, err := engine.PublicKeyFromSeed(testSeed())
	require.NoError(t, err)

	valid, err := engine.Verify([]byte("tampered"), signature, publicKey)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	signature, err := engine.Sign([]byte("message"), testSeed())
	require.NoError(t, err)

	otherKey, err := engine.PublicKeyFromSeed(bytes.Repeat([]byte{0x24}, engine.SeedSize))
	require.NoError(t, err)

	valid, err := engine.Verify([]byte("message"), signature, otherKey)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerifyRejectsTruncatedSignature(t *testing.T) {
	publicKey, err := engine.PublicKeyFromSeed(testSeed())
	require.NoError(t, err)

	valid, err := engine.Verify([]byte("message"), []byte{0x01, 0x02}, publicKey)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestSignRejectsBadSeed(t *testing.T) {
	_, err := engine.Sign([]byte("message"), []byte("too short"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, sigerrors.ErrCryptoUnavailable))
}

func TestVerifyRejectsBadPublicKey(t *testing.T) {
	_, err := engine.Verify([]byte("message"), bytes.Repeat([]byte{0}, engine.SignatureSize), []byte("short"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, sigerrors.ErrCryptoUnavailable))
}
