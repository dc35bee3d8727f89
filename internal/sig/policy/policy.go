package policy

import (
	"os"
	"time"

	"github.com/kashguard/go-sigauth/internal/sig/component"
	"github.com/kashguard/go-sigauth/internal/sig/sigparams"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var ErrPolicyNotFound = errors.New("verification policy not found")

// VerificationPolicy parameterizes the verification pipeline. The
// pipeline logic itself is policy-agnostic; named policies differ only in
// these values.
type VerificationPolicy struct {
	Name                    string
	RequiredComponents      component.Components
	MaxTimestampAge         time.Duration
	ClockSkewTolerance      time.Duration
	NonceEnforcementEnabled bool
	RejectWeakNonces        bool
	AllowedAlgorithms       []string
}

// AlgorithmAllowed reports whether the policy accepts a signature
// algorithm.
func (p VerificationPolicy) AlgorithmAllowed(alg string) bool {
	for _, allowed := range p.AllowedAlgorithms {
		if allowed == alg {
			return true
		}
	}
	return false
}

// Built-in policies, from most to least demanding. Legacy exists for
// callers that cannot yet share a nonce store; it keeps the window check
// but disables nonce enforcement.
func Strict() VerificationPolicy {
	return VerificationPolicy{
		Name: "strict",
		RequiredComponents: component.Components{
			Method:        true,
			TargetURI:     true,
			ContentDigest: true,
		},
		MaxTimestampAge:         2 * time.Minute,
		ClockSkewTolerance:      5 * time.Second,
		NonceEnforcementEnabled: true,
		RejectWeakNonces:        true,
		AllowedAlgorithms:       []string{sigparams.AlgorithmEd25519},
	}
}

func Standard() VerificationPolicy {
	return VerificationPolicy{
		Name: "standard",
		RequiredComponents: component.Components{
			Method:        true,
			TargetURI:     true,
			ContentDigest: true,
		},
		MaxTimestampAge:         5 * time.Minute,
		ClockSkewTolerance:      30 * time.Second,
		NonceEnforcementEnabled: true,
		AllowedAlgorithms:       []string{sigparams.AlgorithmEd25519},
	}
}

func Lenient() VerificationPolicy {
	return VerificationPolicy{
		Name: "lenient",
		RequiredComponents: component.Components{
			Method:    true,
			TargetURI: true,
		},
		MaxTimestampAge:         15 * time.Minute,
		ClockSkewTolerance:      2 * time.Minute,
		NonceEnforcementEnabled: true,
		AllowedAlgorithms:       []string{sigparams.AlgorithmEd25519},
	}
}

func Legacy() VerificationPolicy {
	return VerificationPolicy{
		Name: "legacy",
		RequiredComponents: component.Components{
			Method:    true,
			TargetURI: true,
		},
		MaxTimestampAge:         time.Hour,
		ClockSkewTolerance:      5 * time.Minute,
		NonceEnforcementEnabled: false,
		AllowedAlgorithms:       []string{sigparams.AlgorithmEd25519},
	}
}

// Set is a named collection of verification policies.
type Set struct {
	policies map[string]VerificationPolicy
}

// DefaultSet returns the four built-in policies.
func DefaultSet() *Set {
	s := &Set{policies: make(map[string]VerificationPolicy)}
	for _, p := range []VerificationPolicy{Strict(), Standard(), Lenient(), Legacy()} {
		s.policies[p.Name] = p
	}
	return s
}

func (s *Set) Get(name string) (VerificationPolicy, error) {
	p, ok := s.policies[name]
	if !ok {
		return VerificationPolicy{}, errors.Wrapf(ErrPolicyNotFound, "policy %q", name)
	}
	return p, nil
}

func (s *Set) Put(p VerificationPolicy) {
	s.policies[p.Name] = p
}

type policyFile struct {
	Policies []struct {
		Name              string               `yaml:"name"`
		Components        component.Components `yaml:"components"`
		MaxAge            string               `yaml:"max_age"`
		ClockSkew         string               `yaml:"clock_skew"`
		NonceEnforcement  *bool                `yaml:"nonce_enforcement"`
		RejectWeakNonces  bool                 `yaml:"reject_weak_nonces"`
		AllowedAlgorithms []string             `yaml:"allowed_algorithms"`
	} `yaml:"policies"`
}

// LoadFile layers policies from a YAML file over the built-in set.
// Entries with a known name replace the built-in definition; new names
// are added.
func LoadFile(path string) (*Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read policy file %s", path)
	}

	var file policyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Wrapf(err, "failed to parse policy file %s", path)
	}

	set := DefaultSet()
	for _, entry := range file.Policies {
		if entry.Name == "" {
			return nil, errors.Errorf("policy entry without a name in %s", path)
		}
		if entry.MaxAge == "" {
			return nil, errors.Errorf("policy %q has no max_age", entry.Name)
		}

		maxAge, err := time.ParseDuration(entry.MaxAge)
		if err != nil || maxAge <= 0 {
			return nil, errors.Errorf("policy %q has invalid max_age %q", entry.Name, entry.MaxAge)
		}

		var clockSkew time.Duration
		if entry.ClockSkew != "" {
			clockSkew, err = time.ParseDuration(entry.ClockSkew)
			if err != nil || clockSkew < 0 {
				return nil, errors.Errorf("policy %q has invalid clock_skew %q", entry.Name, entry.ClockSkew)
			}
		}

		nonceEnforcement := true
		if entry.NonceEnforcement != nil {
			nonceEnforcement = *entry.NonceEnforcement
		}

		algorithms := entry.AllowedAlgorithms
		if len(algorithms) == 0 {
			algorithms = []string{sigparams.AlgorithmEd25519}
		}

		set.Put(VerificationPolicy{
			Name:                    entry.Name,
			RequiredComponents:      entry.Components,
			MaxTimestampAge:         maxAge,
			ClockSkewTolerance:      clockSkew,
			NonceEnforcementEnabled: nonceEnforcement,
			RejectWeakNonces:        entry.RejectWeakNonces,
			AllowedAlgorithms:       algorithms,
		})
	}

	return set, nil
}
