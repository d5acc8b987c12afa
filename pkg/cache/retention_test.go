package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touchCommit(t *testing.T, dir, name string, age time.Duration) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(path, 0o755))
	modTime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestReconcilePrunesOnlyStaleCommitsBeyondMinKeep(t *testing.T) {
	mgr := newTestManager(t)

	touchCommit(t, mgr.dir, "oldest", 30*24*time.Hour)
	touchCommit(t, mgr.dir, "middle", 10*24*time.Hour)
	touchCommit(t, mgr.dir, "newest", time.Hour)

	r := NewRetentionReconciler(mgr, RetentionPolicy{MaxAge: 7 * 24 * time.Hour, MinKeep: 1})
	require.NoError(t, r.reconcile())

	assert.True(t, mgr.IsCached("newest"), "newest commit protected by recency")
	assert.False(t, mgr.IsCached("oldest"), "oldest commit beyond MaxAge and MinKeep should be reclaimed")
	assert.False(t, mgr.IsCached("middle"), "middle commit beyond MaxAge and MinKeep should be reclaimed")
}

func TestReconcileMinKeepProtectsRecentCommitsEvenIfStale(t *testing.T) {
	mgr := newTestManager(t)

	touchCommit(t, mgr.dir, "a", 30*24*time.Hour)
	touchCommit(t, mgr.dir, "b", 20*24*time.Hour)
	touchCommit(t, mgr.dir, "c", 10*24*time.Hour)

	r := NewRetentionReconciler(mgr, RetentionPolicy{MaxAge: time.Hour, MinKeep: 2})
	require.NoError(t, r.reconcile())

	assert.True(t, mgr.IsCached("b"), "2nd most recent protected by MinKeep")
	assert.True(t, mgr.IsCached("c"), "most recent protected by MinKeep")
	assert.False(t, mgr.IsCached("a"), "3rd commit exceeds MinKeep and is stale")
}

func TestReconcileZeroMaxAgeDisablesPruning(t *testing.T) {
	mgr := newTestManager(t)
	touchCommit(t, mgr.dir, "ancient", 365*24*time.Hour)

	r := NewRetentionReconciler(mgr, RetentionPolicy{MaxAge: 0, MinKeep: 0})
	require.NoError(t, r.reconcile())

	assert.True(t, mgr.IsCached("ancient"))
}
</content>
