package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/autobot/fleetctl/pkg/apperr"
)

// TokenTTL is how long an issued access token remains exchangeable.
const TokenTTL = 5 * time.Minute

// tokenEntry is what an issued token maps to in the store.
type tokenEntry struct {
	credentialID string
	expiresAt    time.Time
}

// TokenStore is the Credential Vault's ephemeral, in-memory access
// token map (spec AccessToken). It is guarded by a single mutex and is
// the only in-memory mutable state the Vault owns; credentials
// themselves live in the store.
type TokenStore struct {
	mu     sync.Mutex
	tokens map[string]tokenEntry
}

// NewTokenStore constructs an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]tokenEntry)}
}

// Issue mints a random 256-bit URL-safe token bound to credentialID,
// expiring after TokenTTL.
func (s *TokenStore) Issue(credentialID string) string {
	buf := make([]byte, 32)
	// crypto/rand.Read never returns a short read without an error, and
	// an error here would only come from a broken entropy source —
	// there is nothing a caller could usefully do about it, so the
	// teacher's own token generator (pkg/manager/token.go) also treats
	// this as unreachable in normal operation.
	_, _ = rand.Read(buf)
	token := base64.RawURLEncoding.EncodeToString(buf)

	s.mu.Lock()
	s.tokens[token] = tokenEntry{credentialID: credentialID, expiresAt: time.Now().Add(TokenTTL)}
	s.mu.Unlock()

	return token
}

// Exchange is atomic: the token is removed from the store on this
// call whether it succeeds, is expired, or is unknown (invariant I7 /
// property P2). Callers must not retry a failed exchange with the
// same token — it is gone.
func (s *TokenStore) Exchange(token string) (string, error) {
	s.mu.Lock()
	entry, ok := s.tokens[token]
	delete(s.tokens, token)
	s.mu.Unlock()

	if !ok {
		return "", fmt.Errorf("%w", apperr.ErrTokenInvalid)
	}
	if time.Now().After(entry.expiresAt) {
		return "", fmt.Errorf("%w", apperr.ErrTokenExpired)
	}
	return entry.credentialID, nil
}
