package replay

import (
	"context"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/kashguard/go-sigauth/internal/sig"
	"github.com/kashguard/go-sigauth/internal/sig/sigparams"
	"github.com/pkg/errors"

	"github.com/dropbox/godropbox/time2"
)

// NonceStore is the shared store the guard consumes. InsertIfAbsent must
// be a single atomic operation with first-committer-wins semantics: of
// any number of concurrent calls for the same key, exactly one observes
// inserted=true. A separate exists-then-insert sequence is not an
// acceptable implementation.
type NonceStore interface {
	InsertIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Window are the replay parameters of the active verification policy.
type Window struct {
	MaxAge        time.Duration
	SkewTolerance time.Duration
	EnforceNonce  bool
}

// Guard enforces replay prevention: the created timestamp must fall
// inside the policy freshness window, and the (keyid, nonce) pair must
// never have been accepted before within that window.
type Guard struct {
	store NonceStore
	clock time2.Clock
}

func NewGuard(store NonceStore, clock time2.Clock) *Guard {
	return &Guard{
		store: store,
		clock: clock,
	}
}

// Check runs both replay checks. The nonce is consumed as a side effect
// of a successful uniqueness check; once consumed it stays consumed until
// TTL expiry, even if the caller later abandons the verification.
func (g *Guard) Check(ctx context.Context, keyID string, params sigparams.Params, window Window) error {
	now := g.clock.Now().Unix()
	age := now - params.Created

	if age > int64(window.MaxAge/time.Second) {
		return errors.Wrapf(sig.ErrTimestampOutOfWindow, "created %ds ago, max age %s", age, window.MaxAge)
	}
	if age < -int64(window.SkewTolerance/time.Second) {
		return errors.Wrapf(sig.ErrTimestampOutOfWindow, "created %ds in the future, skew tolerance %s", -age, window.SkewTolerance)
	}

	if !window.EnforceNonce {
		return nil
	}

	inserted, err := g.store.InsertIfAbsent(ctx, nonceKey(keyID, params.Nonce), window.MaxAge)
	if err != nil {
		return errors.Wrap(err, "nonce store unavailable")
	}
	if !inserted {
		return errors.Wrapf(sig.ErrNonceReused, "nonce %q already consumed for key %q", params.Nonce, keyID)
	}

	return nil
}

// nonceKey scopes nonce uniqueness per signing key.
func nonceKey(keyID, nonce string) string {
	return keyID + ":" + nonce
}

// IsWeakNonce is a non-authoritative heuristic flagging nonces with low
// character-set entropy or obvious repeating patterns. It is a
// defense-in-depth signal only and is never a substitute for the
// uniqueness check: a well-formed UUIDv4 always passes, and a weak nonce
// that is genuinely fresh still consumes its slot in the store.
func IsWeakNonce(nonce string) bool {
	if strfmt.IsUUID4(nonce) {
		return false
	}

	distinct := make(map[rune]struct{}, len(nonce))
	for _, r := range nonce {
		distinct[r] = struct{}{}
	}
	if len(distinct) < 4 {
		return true
	}

	// A nonce made of one short block repeated end to end carries far
	// less entropy than its length suggests.
	for _, size := range []int{1, 2, 3, 4} {
		if len(nonce) >= size*4 && len(nonce)%size == 0 {
			block := nonce[:size]
			if strings.Count(nonce, block)*size == len(nonce) {
				return true
			}
		}
	}

	return false
}
