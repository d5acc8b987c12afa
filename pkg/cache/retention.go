package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/autobot/fleetctl/pkg/log"
	"github.com/rs/zerolog"
)

// RetentionPolicy bounds how many cached commits accumulate on disk.
// MaxAge prunes anything older than the duration; MinKeep protects the
// N most recently pulled commits from MaxAge even if they're stale,
// so a rollback target doesn't get reaped out from under an operator.
type RetentionPolicy struct {
	MaxAge  time.Duration
	MinKeep int
}

// RetentionReconciler periodically prunes the cache directory down to
// RetentionPolicy. Its shape — ticker loop, mutex-guarded cycle,
// closed-channel stop — follows the control plane's other background
// loops (pkg/schedule's executor).
type RetentionReconciler struct {
	cache    *Manager
	policy   RetentionPolicy
	interval time.Duration
	logger   zerolog.Logger
	mu       sync.Mutex
	stopCh   chan struct{}
}

// NewRetentionReconciler builds a reconciler over cache, unstarted.
func NewRetentionReconciler(cache *Manager, policy RetentionPolicy) *RetentionReconciler {
	return &RetentionReconciler{
		cache:    cache,
		policy:   policy,
		interval: 10 * time.Minute,
		logger:   log.WithComponent("cache-retention"),
		stopCh:   make(chan struct{}),
	}
}

// Start begins the reconciliation loop in its own goroutine.
func (r *RetentionReconciler) Start() {
	go r.run()
}

// Stop halts the loop. Safe to call once.
func (r *RetentionReconciler) Stop() {
	close(r.stopCh)
}

func (r *RetentionReconciler) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Msg("cache retention reconciler started")

	for {
		select {
		case <-ticker.C:
			if err := r.reconcile(); err != nil {
				r.logger.Error().Err(err).Msg("retention cycle failed")
			}
		case <-r.stopCh:
			r.logger.Info().Msg("cache retention reconciler stopped")
			return
		}
	}
}

type cachedCommit struct {
	name    string
	path    string
	modTime time.Time
}

func (r *RetentionReconciler) reconcile() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := os.ReadDir(r.cache.dir)
	if err != nil {
		return fmt.Errorf("read cache dir: %w", err)
	}

	var commits []cachedCommit
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		commits = append(commits, cachedCommit{
			name:    e.Name(),
			path:    filepath.Join(r.cache.dir, e.Name()),
			modTime: info.ModTime(),
		})
	}

	sort.Slice(commits, func(i, j int) bool { return commits[i].modTime.After(commits[j].modTime) })

	now := time.Now()
	for i, c := range commits {
		if i < r.policy.MinKeep {
			continue
		}
		if r.policy.MaxAge > 0 && now.Sub(c.modTime) > r.policy.MaxAge {
			r.logger.Info().Str("commit", c.name).Msg("reclaiming stale cached commit")
			if err := os.RemoveAll(c.path); err != nil {
				r.logger.Error().Err(err).Str("commit", c.name).Msg("failed to reclaim cached commit")
			}
		}
	}

	return nil
}
