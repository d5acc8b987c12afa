package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobot/fleetctl/pkg/registry"
	"github.com/autobot/fleetctl/pkg/storage"
	"github.com/autobot/fleetctl/pkg/types"
)

func TestValidateCronExpression(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		valid bool
	}{
		{"every minute", "* * * * *", true},
		{"nightly", "0 2 * * *", true},
		{"weekdays", "30 9 * * 1-5", true},
		{"too few fields", "* * *", false},
		{"garbage", "not a cron", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateCronExpression(tt.expr))
		})
	}
}

func TestNextRunAdvancesStrictlyAfterBase(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	next, err := NextRun("0 2 * * *", base)
	require.NoError(t, err)
	assert.True(t, next.After(base))
	assert.Equal(t, 2, next.Hour())
}

type fakeCache struct {
	commit string
	err    error
}

func (f *fakeCache) Ensure(ctx context.Context) (string, error) { return f.commit, f.err }

type fakeOrchestrator struct {
	calls   int
	success bool
	message string
}

func (f *fakeOrchestrator) ExecuteSchedule(ctx context.Context, sch *types.Schedule, commit string) (bool, string) {
	f.calls++
	return f.success, f.message
}

func newTestExecutor(t *testing.T, cache CacheEnsurer, orch ScheduleRunner) (*Executor, storage.Store) {
	t.Helper()
	store, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	reg := registry.New(store)
	return New(store, reg, cache, orch), store
}

func TestCheckAndExecuteFiresDueSchedules(t *testing.T) {
	orch := &fakeOrchestrator{success: true, message: "ok"}
	exec, store := newTestExecutor(t, &fakeCache{commit: "abc123"}, orch)

	past := time.Now().Add(-time.Minute)
	due := &types.Schedule{ID: "sched-1", Name: "nightly", CronExpression: "* * * * *", Enabled: true, NextRun: &past}
	require.NoError(t, store.CreateSchedule(due))

	future := time.Now().Add(time.Hour)
	notDue := &types.Schedule{ID: "sched-2", Name: "later", CronExpression: "* * * * *", Enabled: true, NextRun: &future}
	require.NoError(t, store.CreateSchedule(notDue))

	disabled := &types.Schedule{ID: "sched-3", Name: "off", CronExpression: "* * * * *", Enabled: false, NextRun: &past}
	require.NoError(t, store.CreateSchedule(disabled))

	n, err := exec.CheckAndExecute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, orch.calls)

	updated, err := store.GetSchedule("sched-1")
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusSucceeded, updated.LastRunStatus)
	assert.Equal(t, "ok", updated.LastRunMessage)
	assert.NotNil(t, updated.NextRun)
	assert.True(t, updated.NextRun.After(past))
}

func TestCheckAndExecuteRecordsFailure(t *testing.T) {
	orch := &fakeOrchestrator{success: false, message: "sync failed"}
	exec, store := newTestExecutor(t, &fakeCache{commit: "abc123"}, orch)

	past := time.Now().Add(-time.Minute)
	sch := &types.Schedule{ID: "sched-1", CronExpression: "* * * * *", Enabled: true, NextRun: &past}
	require.NoError(t, store.CreateSchedule(sch))

	n, err := exec.CheckAndExecute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	updated, err := store.GetSchedule("sched-1")
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusFailed, updated.LastRunStatus)
}
</content>
