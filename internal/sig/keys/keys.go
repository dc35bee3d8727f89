package keys

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"os"
	"sync"

	"github.com/kashguard/go-sigauth/internal/sig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Resolver maps a keyid to the Ed25519 public key registered for it.
// Implementations return sig.ErrUnknownKey for unregistered or disabled
// keys.
type Resolver interface {
	Resolve(ctx context.Context, keyID string) (ed25519.PublicKey, error)
}

// StaticRegistry is an in-memory Resolver backed by a fixed key set,
// typically loaded from a registry file at startup.
type StaticRegistry struct {
	mu   sync.RWMutex
	keys map[string]ed25519.PublicKey
}

func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{
		keys: make(map[string]ed25519.PublicKey),
	}
}

// Register adds or replaces a public key.
func (r *StaticRegistry) Register(keyID string, publicKey ed25519.PublicKey) error {
	if keyID == "" {
		return errors.New("empty keyid")
	}
	if len(publicKey) != ed25519.PublicKeySize {
		return errors.Errorf("public key for %q must be %d bytes, got %d", keyID, ed25519.PublicKeySize, len(publicKey))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := make(ed25519.PublicKey, len(publicKey))
	copy(key, publicKey)
	r.keys[keyID] = key

	return nil
}

func (r *StaticRegistry) Resolve(_ context.Context, keyID string) (ed25519.PublicKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.keys[keyID]
	if !ok {
		return nil, errors.Wrapf(sig.ErrUnknownKey, "keyid %q", keyID)
	}

	return key, nil
}

type registryFile struct {
	Keys map[string]string `yaml:"keys"`
}

// LoadRegistryFile reads a YAML registry of base64-encoded public keys:
//
//	keys:
//	  client-key-1: "SGVsbG8...="
func LoadRegistryFile(path string) (*StaticRegistry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read key registry file %s", path)
	}

	var file registryFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Wrapf(err, "failed to parse key registry file %s", path)
	}

	registry := NewStaticRegistry()
	for keyID, encoded := range file.Keys {
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, errors.Wrapf(err, "public key for %q is not base64", keyID)
		}
		if err := registry.Register(keyID, key); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// Keyring holds the private signing seeds available to the sign endpoint,
// keyed by keyid. Key custody beyond this lookup is out of scope here.
type Keyring struct {
	mu    sync.RWMutex
	seeds map[string][]byte
}

func NewKeyring() *Keyring {
	return &Keyring{
		seeds: make(map[string][]byte),
	}
}

func (k *Keyring) Add(keyID string, seed []byte) error {
	if keyID == "" {
		return errors.New("empty keyid")
	}
	if len(seed) != ed25519.SeedSize {
		return errors.Errorf("seed for %q must be %d bytes, got %d", keyID, ed25519.SeedSize, len(seed))
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	copied := make([]byte, len(seed))
	copy(copied, seed)
	k.seeds[keyID] = copied

	return nil
}

func (k *Keyring) Seed(keyID string) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	seed, ok := k.seeds[keyID]
	if !ok {
		return nil, errors.Wrapf(sig.ErrUnknownKey, "no signing seed for keyid %q", keyID)
	}

	copied := make([]byte, len(seed))
	copy(copied, seed)
	return copied, nil
}

type keyringFile struct {
	SigningKeys map[string]string `yaml:"signing_keys"`
}

// LoadKeyringFile reads a YAML keyring of base64-encoded 32-byte seeds.
func LoadKeyringFile(path string) (*Keyring, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read keyring file %s", path)
	}

	var file keyringFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Wrapf(err, "failed to parse keyring file %s", path)
	}

	keyring := NewKeyring()
	for keyID, encoded := range file.SigningKeys {
		seed, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, errors.Wrapf(err, "seed for %q is not base64", keyID)
		}
		if err := keyring.Add(keyID, seed); err != nil {
			return nil, err
		}
	}

	return keyring, nil
}
