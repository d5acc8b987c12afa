// Package registry implements the Node Registry and Role Catalog
// (spec C2, C3): CRUD over nodes, roles, and their assignments, plus
// the one non-trivial rule in that CRUD surface — NPU extra_data
// lifecycle and atomic CodeSource activation.
package registry

import (
	"fmt"
	"time"

	"github.com/autobot/fleetctl/pkg/apperr"
	"github.com/autobot/fleetctl/pkg/storage"
	"github.com/autobot/fleetctl/pkg/types"
)

// Registry owns Node, Role, NodeRole, and CodeSource CRUD. It is a
// thin, explicitly-constructed layer over a Store — no singleton, no
// package-level instance.
type Registry struct {
	store storage.Store
}

// New builds a Registry over store.
func New(store storage.Store) *Registry {
	return &Registry{store: store}
}

// --- Nodes ---

// RegisterNode creates a Node, defaulting SSHPort and CodeStatus.
func (r *Registry) RegisterNode(node *types.Node) error {
	if node.ID == "" {
		return fmt.Errorf("node id required: %w", apperr.ErrValidation)
	}
	if node.SSHPort == 0 {
		node.SSHPort = types.DefaultSSHPort
	}
	if node.CodeStatus == "" {
		node.CodeStatus = types.CodeStatusUnknown
	}
	node.CreatedAt = time.Now()
	node.UpdatedAt = time.Now()
	return r.store.CreateNode(node)
}

func (r *Registry) GetNode(id string) (*types.Node, error) {
	return r.store.GetNode(id)
}

func (r *Registry) ListNodes() ([]*types.Node, error) {
	return r.store.ListNodes()
}

func (r *Registry) UpdateNode(node *types.Node) error {
	node.UpdatedAt = time.Now()
	return r.store.UpdateNode(node)
}

// DeregisterNode is the only way a Node is destroyed (explicit
// deregistration, per spec.md §3).
func (r *Registry) DeregisterNode(id string) error {
	return r.store.DeleteNode(id)
}

// --- Roles ---

func (r *Registry) CreateRole(role *types.Role) error {
	role.CreatedAt = time.Now()
	return r.store.CreateRole(role)
}

func (r *Registry) GetRole(name string) (*types.Role, error) {
	return r.store.GetRole(name)
}

func (r *Registry) ListRoles() ([]*types.Role, error) {
	return r.store.ListRoles()
}

func (r *Registry) UpdateRole(role *types.Role) error {
	return r.store.UpdateRole(role)
}

func (r *Registry) DeleteRole(name string) error {
	return r.store.DeleteRole(name)
}

// --- NodeRole assignment ---

// AssignRole assigns role to node. Reassigning an already-assigned
// role is a conflict (matching the REST surface's 409 on
// POST /nodes/{id}/role/{name}). Assigning the NPU-worker role
// initializes extra_data.npu; spec.md §4.2's one non-trivial CRUD rule.
func (r *Registry) AssignRole(nodeID, roleName string, assignType types.AssignmentType) (*types.NodeRole, error) {
	node, err := r.store.GetNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", nodeID, apperr.ErrNotFound)
	}
	if _, err := r.store.GetRole(roleName); err != nil {
		return nil, fmt.Errorf("role %s: %w", roleName, apperr.ErrNotFound)
	}
	if _, err := r.store.GetNodeRole(nodeID, roleName); err == nil {
		return nil, fmt.Errorf("role %s already assigned to %s: %w", roleName, nodeID, apperr.ErrConflict)
	}

	nr := &types.NodeRole{
		NodeID:         nodeID,
		RoleName:       roleName,
		AssignmentType: assignType,
		Status:         types.NodeRoleStatusPending,
	}
	if err := r.store.UpsertNodeRole(nr); err != nil {
		return nil, err
	}

	if roleName == types.NPURoleName {
		if node.ExtraData == nil {
			node.ExtraData = map[string]any{}
		}
		node.ExtraData["npu"] = map[string]any{
			"detection_status": "PENDING",
			"capabilities":     nil,
			"loaded_models":    []string{},
			"queue_depth":      0,
		}
		node.UpdatedAt = time.Now()
		if err := r.store.UpdateNode(node); err != nil {
			return nil, err
		}
	}
	if !containsRole(node.Roles, roleName) {
		node.Roles = append(node.Roles, roleName)
		if err := r.store.UpdateNode(node); err != nil {
			return nil, err
		}
	}

	return nr, nil
}

// UnassignRole removes the (node, role) assignment and, for the
// NPU-worker role, the extra_data.npu subtree it introduced.
func (r *Registry) UnassignRole(nodeID, roleName string) error {
	if _, err := r.store.GetNodeRole(nodeID, roleName); err != nil {
		return fmt.Errorf("role %s not assigned to %s: %w", roleName, nodeID, apperr.ErrNotFound)
	}
	if err := r.store.DeleteNodeRole(nodeID, roleName); err != nil {
		return err
	}

	node, err := r.store.GetNode(nodeID)
	if err != nil {
		return nil // node already gone; nothing further to clean up
	}
	node.Roles = removeRole(node.Roles, roleName)
	if roleName == types.NPURoleName && node.ExtraData != nil {
		delete(node.ExtraData, "npu")
	}
	node.UpdatedAt = time.Now()
	return r.store.UpdateNode(node)
}

func (r *Registry) GetNodeRole(nodeID, roleName string) (*types.NodeRole, error) {
	return r.store.GetNodeRole(nodeID, roleName)
}

func (r *Registry) ListNodeRolesByNode(nodeID string) ([]*types.NodeRole, error) {
	return r.store.ListNodeRolesByNode(nodeID)
}

// UpsertNodeRole is used by the Sync Orchestrator to record a sync
// outcome (current_version/last_synced_at/status).
func (r *Registry) UpsertNodeRole(nr *types.NodeRole) error {
	return r.store.UpsertNodeRole(nr)
}

// --- CodeSource ---

// SetActiveCodeSource atomically deactivates whatever CodeSource is
// currently active and activates id (invariant I1).
func (r *Registry) SetActiveCodeSource(id string) error {
	if _, err := r.store.GetCodeSource(id); err != nil {
		return fmt.Errorf("code source %s: %w", id, apperr.ErrNotFound)
	}
	return r.store.SetActiveCodeSource(id)
}

func (r *Registry) GetActiveCodeSource() (*types.CodeSource, error) {
	return r.store.GetActiveCodeSource()
}

func (r *Registry) CreateCodeSource(cs *types.CodeSource) error {
	cs.CreatedAt = time.Now()
	return r.store.CreateCodeSource(cs)
}

func (r *Registry) ListCodeSources() ([]*types.CodeSource, error) {
	return r.store.ListCodeSources()
}

// --- candidate selection for fan-out ---

// CandidatesForSchedule resolves the Node set a Schedule's target_type
// selects, then narrows it to nodes whose code_status is OUTDATED —
// execute_schedule only ever syncs stale nodes.
func (r *Registry) CandidatesForSchedule(sch *types.Schedule) ([]*types.Node, error) {
	all, err := r.store.ListNodes()
	if err != nil {
		return nil, err
	}

	var targeted []*types.Node
	switch sch.TargetType {
	case types.TargetSpecific:
		set := make(map[string]bool, len(sch.TargetNodes))
		for _, id := range sch.TargetNodes {
			set[id] = true
		}
		for _, n := range all {
			if set[n.ID] {
				targeted = append(targeted, n)
			}
		}
	case types.TargetFilter, types.TargetAll:
		targeted = all
	default:
		targeted = all
	}

	outdated := make([]*types.Node, 0, len(targeted))
	for _, n := range targeted {
		if n.CodeStatus == types.CodeStatusOutdated {
			outdated = append(outdated, n)
		}
	}
	return outdated, nil
}

func containsRole(roles []string, name string) bool {
	for _, r := range roles {
		if r == name {
			return true
		}
	}
	return false
}

func removeRole(roles []string, name string) []string {
	out := roles[:0]
	for _, r := range roles {
		if r != name {
			out = append(out, r)
		}
	}
	return out
}
