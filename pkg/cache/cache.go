// Package cache implements the Cache Manager (spec C4): it pulls the
// active CodeSource's commit into a local directory tree, one
// subdirectory per commit, and reclaims old commits on a retention
// policy the control plane is otherwise silent about.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/autobot/fleetctl/pkg/apperr"
	"github.com/autobot/fleetctl/pkg/log"
	"github.com/autobot/fleetctl/pkg/registry"
	"github.com/autobot/fleetctl/pkg/transport"
	"github.com/autobot/fleetctl/pkg/types"
)

// Manager owns the local code cache directory and the registry needed
// to resolve the active CodeSource.
type Manager struct {
	dir      string
	registry *registry.Registry
}

// New builds a Manager rooted at dir, creating it if necessary.
func New(dir string, reg *registry.Registry) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &Manager{dir: dir, registry: reg}, nil
}

// CommitPath returns the local directory a given commit is (or would
// be) cached under.
func (m *Manager) CommitPath(commit string) string {
	return filepath.Join(m.dir, commit)
}

// IsCached reports whether commit already has a local directory.
func (m *Manager) IsCached(commit string) bool {
	info, err := os.Stat(m.CommitPath(commit))
	return err == nil && info.IsDir()
}

// Ensure pulls the active CodeSource's commit into the cache if it
// isn't already there. A partially-pulled directory left behind by a
// failed or timed-out rsync is removed rather than treated as cached,
// so a retry starts clean.
func (m *Manager) Ensure(ctx context.Context) (string, error) {
	source, err := m.registry.GetActiveCodeSource()
	if err != nil {
		return "", fmt.Errorf("no active code source: %w", apperr.ErrNotFound)
	}
	commit := source.LastKnownCommit
	if commit == "" {
		commit = "latest"
	}
	if m.IsCached(commit) {
		return commit, nil
	}

	node, err := m.registry.GetNode(source.NodeID)
	if err != nil {
		return "", fmt.Errorf("code source node %s: %w", source.NodeID, apperr.ErrNotFound)
	}

	dest := m.CommitPath(commit)
	target := transport.Target{User: sshUser(node), Host: node.IPAddress, Port: node.SSHPort}

	logger := log.WithComponent("cache")
	logger.Info().Str("commit", commit).Str("node_id", node.ID).Msg("pulling code to cache")

	result, err := transport.Pull(ctx, target, source.RepoPath, dest)
	if err != nil || !result.Success() {
		_ = os.RemoveAll(dest)
		if err != nil {
			return "", fmt.Errorf("pull %s: %w", commit, err)
		}
		return "", fmt.Errorf("pull %s failed (exit %d): %s", commit, result.ExitCode, truncate(result.Output, 200))
	}

	return commit, nil
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
