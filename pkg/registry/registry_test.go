package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobot/fleetctl/pkg/apperr"
	"github.com/autobot/fleetctl/pkg/storage"
	"github.com/autobot/fleetctl/pkg/types"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	store, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return New(store)
}

func TestRegisterNodeDefaults(t *testing.T) {
	reg := newTestRegistry(t)

	node := &types.Node{ID: "node-1", Hostname: "node-1.fleet"}
	require.NoError(t, reg.RegisterNode(node))

	got, err := reg.GetNode("node-1")
	require.NoError(t, err)
	assert.Equal(t, types.DefaultSSHPort, got.SSHPort)
	assert.Equal(t, types.CodeStatusUnknown, got.CodeStatus)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRegisterNodeRequiresID(t *testing.T) {
	reg := newTestRegistry(t)
	err := reg.RegisterNode(&types.Node{Hostname: "no-id"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAssignRoleConflict(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.RegisterNode(&types.Node{ID: "node-1"}))
	require.NoError(t, reg.CreateRole(&types.Role{Name: "web"}))

	_, err := reg.AssignRole("node-1", "web", types.AssignmentManual)
	require.NoError(t, err)

	_, err = reg.AssignRole("node-1", "web", types.AssignmentManual)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestAssignRoleUnknownNodeOrRole(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.CreateRole(&types.Role{Name: "web"}))

	_, err := reg.AssignRole("ghost", "web", types.AssignmentManual)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, reg.RegisterNode(&types.Node{ID: "node-1"}))
	_, err = reg.AssignRole("node-1", "ghost-role", types.AssignmentManual)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAssignRoleNPUInitializesExtraData(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.RegisterNode(&types.Node{ID: "node-1"}))
	require.NoError(t, reg.CreateRole(&types.Role{Name: types.NPURoleName}))

	_, err := reg.AssignRole("node-1", types.NPURoleName, types.AssignmentAuto)
	require.NoError(t, err)

	node, err := reg.GetNode("node-1")
	require.NoError(t, err)
	require.Contains(t, node.Roles, types.NPURoleName)
	npu, ok := node.ExtraData["npu"].(map[string]any)
	require.True(t, ok, "extra_data.npu should be a map")
	assert.Equal(t, "PENDING", npu["detection_status"])
}

func TestUnassignRoleRemovesNPUExtraData(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.RegisterNode(&types.Node{ID: "node-1"}))
	require.NoError(t, reg.CreateRole(&types.Role{Name: types.NPURoleName}))
	_, err := reg.AssignRole("node-1", types.NPURoleName, types.AssignmentAuto)
	require.NoError(t, err)

	require.NoError(t, reg.UnassignRole("node-1", types.NPURoleName))

	node, err := reg.GetNode("node-1")
	require.NoError(t, err)
	assert.NotContains(t, node.Roles, types.NPURoleName)
	assert.NotContains(t, node.ExtraData, "npu")
}

func TestUnassignRoleNotAssigned(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.RegisterNode(&types.Node{ID: "node-1"}))
	err := reg.UnassignRole("node-1", "web")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
</content>
