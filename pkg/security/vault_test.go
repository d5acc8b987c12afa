package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobot/fleetctl/pkg/apperr"
	"github.com/autobot/fleetctl/pkg/storage"
	"github.com/autobot/fleetctl/pkg/types"
)

func newTestVault(t *testing.T) (*Vault, storage.Store) {
	t.Helper()
	store, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	vault, err := NewVault(key, store)
	require.NoError(t, err)
	return vault, store
}

func TestNewVaultRejectsShortKey(t *testing.T) {
	store, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, err = NewVault([]byte("too-short"), store)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateAndExchangeRoundTrip(t *testing.T) {
	vault, store := newTestVault(t)
	require.NoError(t, store.CreateNode(&types.Node{ID: "node-1", IPAddress: "10.0.0.5"}))

	cred, err := vault.Create("node-1", types.CredentialSSH, "primary", PlaintextFields{"password": "s3cret"}, VNCDefaults{})
	require.NoError(t, err)
	assert.NotEmpty(t, cred.ID)
	assert.Equal(t, "node-1", cred.NodeID)

	info, err := vault.GetConnectionInfo(cred.ID, true)
	require.NoError(t, err)
	assert.NotEmpty(t, info.Token)
	assert.Equal(t, "10.0.0.5", info.Host)

	fields, err := vault.ExchangeToken(info.Token)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", fields["password"])

	_, err = vault.ExchangeToken(info.Token)
	assert.ErrorIs(t, err, apperr.ErrTokenInvalid)
}

func TestCreateDuplicateNameConflicts(t *testing.T) {
	vault, store := newTestVault(t)
	require.NoError(t, store.CreateNode(&types.Node{ID: "node-1"}))

	_, err := vault.Create("node-1", types.CredentialSSH, "primary", PlaintextFields{"password": "a"}, VNCDefaults{})
	require.NoError(t, err)

	_, err = vault.Create("node-1", types.CredentialSSH, "primary", PlaintextFields{"password": "b"}, VNCDefaults{})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCreateUnknownNode(t *testing.T) {
	vault, _ := newTestVault(t)
	_, err := vault.Create("ghost", types.CredentialSSH, "primary", PlaintextFields{"password": "a"}, VNCDefaults{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateVNCResolvesPortFromDisplay(t *testing.T) {
	vault, store := newTestVault(t)
	require.NoError(t, store.CreateNode(&types.Node{ID: "node-1"}))

	cred, err := vault.Create("node-1", types.CredentialVNC, "desktop", PlaintextFields{"password": "vnc"}, VNCDefaults{DisplayNumber: 2})
	require.NoError(t, err)
	require.NotNil(t, cred.VNC)
	assert.Equal(t, types.VNCPortBase+2, cred.VNC.VNCPort)
}

func TestListExpiringTLSEmptyWhenNoneStored(t *testing.T) {
	vault, _ := newTestVault(t)
	creds, err := vault.ListExpiringTLS(30)
	require.NoError(t, err)
	assert.Empty(t, creds)
}
</content>
