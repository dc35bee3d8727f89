package engine

import (
	"crypto/ed25519"

	"github.com/kashguard/go-sigauth/internal/sig"
	"github.com/pkg/errors"
)

// Key sizes in bytes. Private keys are handled as 32-byte seeds.
const (
	SeedSize      = ed25519.SeedSize
	PublicKeySize = ed25519.PublicKeySize
	SignatureSize = ed25519.SignatureSize
)

// Sign signs the canonical message bytes with an Ed25519 seed. Ed25519 is
// deterministic for a given message and key; all uniqueness entropy lives
// in the nonce embedded in the message itself.
func Sign(message []byte, seed []byte) ([]byte, error) {
	if len(seed) != SeedSize {
		return nil, errors.Wrapf(sig.ErrCryptoUnavailable, "private key must be %d bytes, got %d", SeedSize, len(seed))
	}

	key := ed25519.NewKeyFromSeed(seed)
	return ed25519.Sign(key, message), nil
}

// PublicKeyFromSeed derives the verification key for a signing seed.
func PublicKeyFromSeed(seed []byte) (ed25519.PublicKey, error) {
	if len(seed) != SeedSize {
		return nil, errors.Wrapf(sig.ErrCryptoUnavailable, "private key must be %d bytes, got %d", SeedSize, len(seed))
	}

	key := ed25519.NewKeyFromSeed(seed)
	pub, ok := key.Public().(ed25519.PublicKey)
	if !ok {
		return nil, errors.Wrap(sig.ErrCryptoUnavailable, "unexpected public key type")
	}
	return pub, nil
}

// Verify checks an Ed25519 signature over the canonical message bytes.
func Verify(message, signature []byte, publicKey ed25519.PublicKey) (bool, error) {
	if len(publicKey) != PublicKeySize {
		return false, errors.Wrapf(sig.ErrCryptoUnavailable, "public key must be %d bytes, got %d", PublicKeySize, len(publicKey))
	}
	if len(signature) != SignatureSize {
		return false, nil
	}

	return ed25519.Verify(publicKey, message, signature), nil
}
