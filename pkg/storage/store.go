package storage

import (
	"github.com/autobot/fleetctl/pkg/types"
)

// Store defines persistence for every entity in the fleet control plane's
// data model. AccessTokens are deliberately absent: per spec they are
// ephemeral and in-memory only, never persisted (see pkg/security).
type Store interface {
	CreateNode(node *types.Node) error
	GetNode(id string) (*types.Node, error)
	ListNodes() ([]*types.Node, error)
	UpdateNode(node *types.Node) error
	DeleteNode(id string) error

	CreateRole(role *types.Role) error
	GetRole(name string) (*types.Role, error)
	ListRoles() ([]*types.Role, error)
	UpdateRole(role *types.Role) error
	DeleteRole(name string) error

	UpsertNodeRole(nr *types.NodeRole) error
	GetNodeRole(nodeID, roleName string) (*types.NodeRole, error)
	ListNodeRoles() ([]*types.NodeRole, error)
	ListNodeRolesByNode(nodeID string) ([]*types.NodeRole, error)
	DeleteNodeRole(nodeID, roleName string) error

	CreateCodeSource(cs *types.CodeSource) error
	GetCodeSource(id string) (*types.CodeSource, error)
	GetActiveCodeSource() (*types.CodeSource, error)
	ListCodeSources() ([]*types.CodeSource, error)
	// SetActiveCodeSource atomically deactivates whatever CodeSource is
	// currently active and activates id, per invariant I1.
	SetActiveCodeSource(id string) error

	CreateCredential(c *types.Credential) error
	GetCredential(id string) (*types.Credential, error)
	FindCredentialByNodeAndName(nodeID, name string) (*types.Credential, error)
	ListCredentialsByNode(nodeID string, activeOnly bool) ([]*types.Credential, error)
	ListCredentialsByType(t types.CredentialType, activeOnly bool) ([]*types.Credential, error)
	UpdateCredential(c *types.Credential) error
	DeleteCredential(id string) error

	CreateSchedule(s *types.Schedule) error
	GetSchedule(id string) (*types.Schedule, error)
	ListSchedules() ([]*types.Schedule, error)
	UpdateSchedule(s *types.Schedule) error
	DeleteSchedule(id string) error

	CreatePlaybookRun(r *types.PlaybookRun) error
	GetPlaybookRun(runID string) (*types.PlaybookRun, error)
	ListPlaybookRuns() ([]*types.PlaybookRun, error)
	UpdatePlaybookRun(r *types.PlaybookRun) error

	Close() error
}
