package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobot/fleetctl/pkg/apperr"
	"github.com/autobot/fleetctl/pkg/types"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNodeCRUD(t *testing.T) {
	store := newTestStore(t)

	node := &types.Node{ID: "node-1", Hostname: "node-1.fleet"}
	require.NoError(t, store.CreateNode(node))

	got, err := store.GetNode("node-1")
	require.NoError(t, err)
	assert.Equal(t, "node-1.fleet", got.Hostname)

	got.Hostname = "renamed.fleet"
	require.NoError(t, store.UpdateNode(got))
	got, err = store.GetNode("node-1")
	require.NoError(t, err)
	assert.Equal(t, "renamed.fleet", got.Hostname)

	nodes, err := store.ListNodes()
	require.NoError(t, err)
	assert.Len(t, nodes, 1)

	require.NoError(t, store.DeleteNode("node-1"))
	_, err = store.GetNode("node-1")
	assert.Error(t, err)
}

func TestGetNodeNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetNode("ghost")
	assert.Error(t, err)
}

func TestSetActiveCodeSourceIsExclusive(t *testing.T) {
	store := newTestStore(t)

	a := &types.CodeSource{ID: "a", NodeID: "node-1", IsActive: true}
	b := &types.CodeSource{ID: "b", NodeID: "node-1"}
	require.NoError(t, store.CreateCodeSource(a))
	require.NoError(t, store.CreateCodeSource(b))

	active, err := store.GetActiveCodeSource()
	require.NoError(t, err)
	assert.Equal(t, "a", active.ID)

	require.NoError(t, store.SetActiveCodeSource("b"))

	active, err = store.GetActiveCodeSource()
	require.NoError(t, err)
	assert.Equal(t, "b", active.ID)

	gotA, err := store.GetCodeSource("a")
	require.NoError(t, err)
	assert.False(t, gotA.IsActive)
}

func TestGetActiveCodeSourceNoneActive(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateCodeSource(&types.CodeSource{ID: "a", NodeID: "node-1"}))

	_, err := store.GetActiveCodeSource()
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCredentialListsRespectActiveOnlyAndType(t *testing.T) {
	store := newTestStore(t)

	active := &types.Credential{ID: "cred-1", NodeID: "node-1", Type: types.CredentialSSH, IsActive: true}
	inactive := &types.Credential{ID: "cred-2", NodeID: "node-1", Type: types.CredentialSSH, IsActive: false}
	other := &types.Credential{ID: "cred-3", NodeID: "node-1", Type: types.CredentialTLS, IsActive: true}
	require.NoError(t, store.CreateCredential(active))
	require.NoError(t, store.CreateCredential(inactive))
	require.NoError(t, store.CreateCredential(other))

	byNode, err := store.ListCredentialsByNode("node-1", true)
	require.NoError(t, err)
	assert.Len(t, byNode, 2)

	byType, err := store.ListCredentialsByType(types.CredentialSSH, true)
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "cred-1", byType[0].ID)
}

func TestFindCredentialByNodeAndName(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateCredential(&types.Credential{ID: "cred-1", NodeID: "node-1", Name: "primary"}))

	got, err := store.FindCredentialByNodeAndName("node-1", "primary")
	require.NoError(t, err)
	assert.Equal(t, "cred-1", got.ID)

	_, err = store.FindCredentialByNodeAndName("node-1", "missing")
	assert.Error(t, err)
}

func TestNodeRoleCRUD(t *testing.T) {
	store := newTestStore(t)

	nr := &types.NodeRole{NodeID: "node-1", RoleName: "web", Status: types.NodeRoleStatusPending}
	require.NoError(t, store.UpsertNodeRole(nr))

	got, err := store.GetNodeRole("node-1", "web")
	require.NoError(t, err)
	assert.Equal(t, types.NodeRoleStatusPending, got.Status)

	require.NoError(t, store.DeleteNodeRole("node-1", "web"))
	_, err = store.GetNodeRole("node-1", "web")
	assert.Error(t, err)
}
</content>
