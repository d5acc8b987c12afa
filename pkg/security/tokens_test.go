package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/autobot/fleetctl/pkg/apperr"
)

func TestTokenExchangeIsSingleUse(t *testing.T) {
	store := NewTokenStore()
	token := store.Issue("cred-1")

	credentialID, err := store.Exchange(token)
	assert.NoError(t, err)
	assert.Equal(t, "cred-1", credentialID)

	_, err = store.Exchange(token)
	assert.ErrorIs(t, err, apperr.ErrTokenInvalid)
}

func TestTokenExchangeUnknown(t *testing.T) {
	store := NewTokenStore()
	_, err := store.Exchange("does-not-exist")
	assert.ErrorIs(t, err, apperr.ErrTokenInvalid)
}

func TestTokenExchangeExpired(t *testing.T) {
	store := NewTokenStore()
	token := store.Issue("cred-1")
	store.mu.Lock()
	entry := store.tokens[token]
	entry.expiresAt = time.Now().Add(-time.Second)
	store.tokens[token] = entry
	store.mu.Unlock()

	_, err := store.Exchange(token)
	assert.ErrorIs(t, err, apperr.ErrTokenExpired)

	// Still single-use even when expired.
	_, err = store.Exchange(token)
	assert.ErrorIs(t, err, apperr.ErrTokenInvalid)
}
</content>
