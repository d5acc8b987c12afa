// Package orchestrator implements the Sync Orchestrator (spec C5):
// the single entry point that pushes a cached commit out to a node's
// assigned roles over SSH/rsync, and fans that out across a
// Schedule's candidate nodes under a chosen restart strategy.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/autobot/fleetctl/pkg/cache"
	"github.com/autobot/fleetctl/pkg/log"
	"github.com/autobot/fleetctl/pkg/registry"
	"github.com/autobot/fleetctl/pkg/transport"
	"github.com/autobot/fleetctl/pkg/types"
)

// Orchestrator ties the Registry and Cache Manager together to
// perform code distribution. It holds the only cross-node
// coordination state in the system: a per-node advisory lock.
type Orchestrator struct {
	registry *registry.Registry
	cache    *cache.Manager

	nodeLocks sync.Map // node_id -> *sync.Mutex
}

// New builds an Orchestrator over reg and cacheMgr.
func New(reg *registry.Registry, cacheMgr *cache.Manager) *Orchestrator {
	return &Orchestrator{registry: reg, cache: cacheMgr}
}

func (o *Orchestrator) lockFor(nodeID string) *sync.Mutex {
	v, _ := o.nodeLocks.LoadOrStore(nodeID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// SyncNodeRole pushes commit to node's instance of role, running the
// role's post_sync_cmd and, if restart is true and the role allows it,
// restarting its systemd unit. Source paths are synced in the order
// role.SourcePaths lists them (ordering guarantee, spec §6).
//
// A source path missing from the cache is logged and skipped rather
// than failing the sync.
func (o *Orchestrator) SyncNodeRole(ctx context.Context, nodeID, roleName, commit string, restart bool) (bool, string) {
	lock := o.lockFor(nodeID)
	lock.Lock()
	defer lock.Unlock()

	logger := log.WithNodeID(nodeID)

	node, err := o.registry.GetNode(nodeID)
	if err != nil {
		return false, fmt.Sprintf("node not found: %s", nodeID)
	}
	role, err := o.registry.GetRole(roleName)
	if err != nil {
		return false, fmt.Sprintf("role not found: %s", roleName)
	}
	if len(role.SourcePaths) == 0 {
		return false, fmt.Sprintf("role has no source paths: %s", roleName)
	}
	if !o.cache.IsCached(commit) {
		return false, fmt.Sprintf("commit not cached: %s", commit)
	}

	target := transport.Target{User: sshUser(node), Host: node.IPAddress, Port: node.SSHPort}
	commitDir := o.cache.CommitPath(commit)

	for _, sourcePath := range role.SourcePaths {
		trailingSlash := strings.HasSuffix(sourcePath, "/")
		localSrc := commitDir + "/" + strings.TrimSuffix(sourcePath, "/")

		if _, err := os.Stat(localSrc); err != nil {
			logger.Warn().Str("role_name", roleName).Str("source_path", sourcePath).Msg("source path missing from cached commit, skipping")
			continue
		}

		result, err := transport.Push(ctx, target, localSrc, trailingSlash, role.TargetPath)
		if err != nil {
			return false, fmt.Sprintf("sync error for %s: %v", sourcePath, err)
		}
		if !result.Success() {
			return false, fmt.Sprintf("sync failed for %s: %s", sourcePath, truncate(result.Output, 200))
		}
	}

	if role.PostSyncCmd != "" {
		if _, err := transport.RunPostSyncCommand(ctx, target, role.PostSyncCmd); err != nil {
			logger.Warn().Err(err).Str("role_name", roleName).Msg("post-sync command failed")
		}
	}

	if restart && role.AutoRestart && role.SystemdService != "" {
		if _, err := transport.RestartService(ctx, target, role.SystemdService); err != nil {
			logger.Warn().Err(err).Str("role_name", roleName).Str("systemd_service", role.SystemdService).Msg("service restart failed")
		} else {
			logger.Info().Str("role_name", roleName).Str("systemd_service", role.SystemdService).Msg("restarted service")
		}
	}

	now := time.Now()
	nr := &types.NodeRole{
		NodeID:         nodeID,
		RoleName:       roleName,
		Status:         types.NodeRoleStatusActive,
		CurrentVersion: commit,
		LastSyncedAt:   &now,
	}
	if existing, err := o.registry.GetNodeRole(nodeID, roleName); err == nil {
		nr.AssignmentType = existing.AssignmentType
	}
	if err := o.registry.UpsertNodeRole(nr); err != nil {
		return false, fmt.Sprintf("synced but failed to record state: %v", err)
	}

	return true, fmt.Sprintf("Synced %s to %s", roleName, nodeID)
}

func sshUser(n *types.Node) string {
	if n.SSHUser == "" {
		return "autobot"
	}
	return n.SSHUser
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
