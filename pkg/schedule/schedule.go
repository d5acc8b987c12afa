// Package schedule implements the Schedule Executor (spec C6): a
// background loop that checks enabled schedules once a cycle and
// fires the Sync Orchestrator for whichever are due, catching up on
// at most the most recent missed firing rather than replaying every
// tick a paused process slept through.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/autobot/fleetctl/pkg/log"
	"github.com/autobot/fleetctl/pkg/orchestrator"
	"github.com/autobot/fleetctl/pkg/registry"
	"github.com/autobot/fleetctl/pkg/storage"
	"github.com/autobot/fleetctl/pkg/types"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// CheckInterval is how often the executor looks for due schedules,
// matching the source's once-a-minute cadence.
const CheckInterval = 60 * time.Second

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronExpression reports whether expr parses as a standard
// 5-field cron expression.
func ValidateCronExpression(expr string) bool {
	_, err := cronParser.Parse(expr)
	return err == nil
}

// NextRun computes the next firing time of expr strictly after base.
func NextRun(expr string, base time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}
	return sched.Next(base), nil
}

// CacheEnsurer resolves the commit a schedule firing should sync —
// the Cache Manager's Ensure method.
type CacheEnsurer interface {
	Ensure(ctx context.Context) (string, error)
}

// ScheduleRunner fans a sync out across a schedule's candidate nodes
// — the Sync Orchestrator's ExecuteSchedule method.
type ScheduleRunner interface {
	ExecuteSchedule(ctx context.Context, sch *types.Schedule, commit string) (bool, string)
}

// Executor runs the schedule-check loop. Its shape mirrors the
// control plane's other background loops: ticker, mutex-guarded
// cycle, stop via closed channel.
type Executor struct {
	store        storage.Store
	registry     *registry.Registry
	cache        CacheEnsurer
	orchestrator ScheduleRunner
	logger       zerolog.Logger
	mu           sync.Mutex
	stopCh       chan struct{}
}

// New builds an unstarted Executor.
func New(store storage.Store, reg *registry.Registry, cache CacheEnsurer, orch ScheduleRunner) *Executor {
	return &Executor{
		store:        store,
		registry:     reg,
		cache:        cache,
		orchestrator: orch,
		logger:       log.WithComponent("schedule-executor"),
		stopCh:       make(chan struct{}),
	}
}

// Start begins the check loop in its own goroutine.
func (e *Executor) Start() {
	go e.run()
}

// Stop halts the loop. Safe to call once.
func (e *Executor) Stop() {
	close(e.stopCh)
}

func (e *Executor) run() {
	ticker := time.NewTicker(CheckInterval)
	defer ticker.Stop()

	e.logger.Info().Msg("schedule executor started")

	for {
		select {
		case <-ticker.C:
			n, err := e.CheckAndExecute(context.Background())
			if err != nil {
				e.logger.Error().Err(err).Msg("schedule check cycle failed")
				continue
			}
			if n > 0 {
				e.logger.Info().Int("count", n).Msg("executed schedule(s) this cycle")
			}
		case <-e.stopCh:
			e.logger.Info().Msg("schedule executor stopped")
			return
		}
	}
}

// CheckAndExecute finds every enabled schedule whose next_run has
// passed and fires it, updating last_run/next_run/last_run_status
// regardless of outcome. A schedule missed across several cycles
// (process was down, wake jitter) fires once for its most recent
// miss — next_run is recomputed from now, not replayed per tick.
func (e *Executor) CheckAndExecute(ctx context.Context) (int, error) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error().Interface("panic", rec).Msg("schedule check cycle panicked")
		}
	}()
	e.mu.Lock()
	defer e.mu.Unlock()

	schedules, err := e.store.ListSchedules()
	if err != nil {
		return 0, fmt.Errorf("list schedules: %w", err)
	}

	now := time.Now()
	executed := 0
	for _, sch := range schedules {
		if !sch.Enabled {
			continue
		}
		if sch.NextRun == nil || sch.NextRun.After(now) {
			continue
		}

		e.fire(ctx, sch, now)
		executed++
	}
	return executed, nil
}

func (e *Executor) fire(ctx context.Context, sch *types.Schedule, now time.Time) {
	logger := log.WithScheduleID(sch.ID)
	logger.Info().Str("name", sch.Name).Msg("schedule is due")

	success, message := e.executeOnce(ctx, sch)

	sch.LastRun = &now
	if next, err := NextRun(sch.CronExpression, now); err == nil {
		sch.NextRun = &next
	} else {
		logger.Error().Err(err).Msg("failed to compute next run; schedule will not fire again until edited")
		sch.NextRun = nil
	}
	if success {
		sch.LastRunStatus = types.RunStatusSucceeded
	} else {
		sch.LastRunStatus = types.RunStatusFailed
	}
	sch.LastRunMessage = message
	sch.UpdatedAt = now

	if err := e.store.UpdateSchedule(sch); err != nil {
		logger.Error().Err(err).Msg("failed to persist schedule run outcome")
	}

	logger.Info().Str("status", string(sch.LastRunStatus)).Str("message", message).Msg("schedule run completed")
}

func (e *Executor) executeOnce(ctx context.Context, sch *types.Schedule) (bool, string) {
	commit, err := e.cache.Ensure(ctx)
	if err != nil {
		return false, fmt.Sprintf("cache ensure failed: %v", err)
	}
	return e.orchestrator.ExecuteSchedule(ctx, sch, commit)
}
