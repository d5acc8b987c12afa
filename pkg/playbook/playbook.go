// Package playbook implements the Playbook Runner (spec C7): it
// invokes ansible-playbook as a child process, streams its stdout
// line by line, and turns a handful of recognizable task names into
// structured ProgressEvents for the Progress Broadcaster.
package playbook

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/autobot/fleetctl/pkg/log"
	"github.com/autobot/fleetctl/pkg/types"
	"github.com/google/uuid"
)

// ansibleDirEnv names the environment variable pointing at the
// directory playbooks and the inventory file live under.
const ansibleDirEnv = "ANSIBLE_DIR"

const defaultAnsibleDir = "/opt/autobot/autobot-slm-backend/ansible"

// ProgressSink receives ProgressEvents as a run streams its output.
type ProgressSink interface {
	Publish(opID string, event types.ProgressEvent)
}

// Runner supervises ansible-playbook subprocess executions.
type Runner struct {
	ansibleDir    string
	inventoryPath string
	sink          ProgressSink

	mu   sync.Mutex
	runs map[string]*types.PlaybookRun
}

// New builds a Runner rooted at ansibleDir ("" uses ANSIBLE_DIR or the
// source's historical default), publishing progress to sink.
func New(ansibleDir string, sink ProgressSink) *Runner {
	if ansibleDir == "" {
		ansibleDir = os.Getenv(ansibleDirEnv)
	}
	if ansibleDir == "" {
		ansibleDir = defaultAnsibleDir
	}
	return &Runner{
		ansibleDir:    ansibleDir,
		inventoryPath: filepath.Join(ansibleDir, "inventory", "slm-nodes.yml"),
		sink:          sink,
		runs:          make(map[string]*types.PlaybookRun),
	}
}

// Run synchronously executes playbookName, streaming progress to the
// sink under a freshly minted run ID, and returns the completed
// PlaybookRun record.
func (r *Runner) Run(ctx context.Context, playbookName string, targets, tags []string, extraVars map[string]string, checkMode bool) (*types.PlaybookRun, error) {
	playbookPath, err := r.preflight(playbookName)
	if err != nil {
		return nil, err
	}

	run := r.register(playbookName, targets, tags, extraVars, checkMode)
	r.execute(ctx, run, playbookPath)
	return run, nil
}

// StartAsync registers a new run and launches its execution in a
// background goroutine, returning the run immediately (State still
// RUNNING) so an HTTP handler can answer 202 Accepted with run_id
// before the playbook finishes. Get(run.RunID) observes progress as
// the goroutine appends output and advances State.
func (r *Runner) StartAsync(playbookName string, targets, tags []string, extraVars map[string]string, checkMode bool) (*types.PlaybookRun, error) {
	playbookPath, err := r.preflight(playbookName)
	if err != nil {
		return nil, err
	}

	run := r.register(playbookName, targets, tags, extraVars, checkMode)
	go r.execute(context.Background(), run, playbookPath)
	return run, nil
}

// preflight resolves playbookName to a path and checks that it, the
// inventory file, and an ansible-playbook executable all exist before
// a run is registered.
func (r *Runner) preflight(playbookName string) (string, error) {
	playbookPath := filepath.Join(r.ansibleDir, playbookName)
	if !fileExists(playbookPath) {
		return "", fmt.Errorf("playbook not found: %s", playbookPath)
	}
	if !fileExists(r.inventoryPath) {
		return "", fmt.Errorf("inventory not found: %s", r.inventoryPath)
	}
	if _, err := findAnsiblePlaybook(); err != nil {
		return "", err
	}
	return playbookPath, nil
}

func (r *Runner) register(playbookName string, targets, tags []string, extraVars map[string]string, checkMode bool) *types.PlaybookRun {
	run := &types.PlaybookRun{
		RunID:        uuid.New().String(),
		PlaybookName: playbookName,
		Targets:      targets,
		Tags:         tags,
		ExtraVars:    extraVars,
		CheckMode:    checkMode,
		State:        types.PlaybookRunning,
		StartedAt:    time.Now(),
	}
	r.mu.Lock()
	r.runs[run.RunID] = run
	r.mu.Unlock()
	return run
}

// execute runs the already-registered run's ansible-playbook child
// process to completion, mutating run in place.
func (r *Runner) execute(ctx context.Context, run *types.PlaybookRun, playbookPath string) {
	logger := log.WithRunID(run.RunID)
	logger.Info().Str("playbook_name", run.PlaybookName).Msg("starting playbook run")
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Msg("playbook run panicked")
			r.fail(run, fmt.Errorf("panic: %v", rec))
		}
	}()

	ansiblePlaybookPath, err := findAnsiblePlaybook()
	if err != nil {
		r.fail(run, err)
		return
	}

	args := buildAnsibleArgs(r.inventoryPath, playbookPath, run.Targets, run.Tags, run.ExtraVars, run.CheckMode)
	cmd := exec.CommandContext(ctx, ansiblePlaybookPath, args...)
	cmd.Dir = r.ansibleDir
	cmd.Env = append(os.Environ(),
		"ANSIBLE_FORCE_COLOR=0",
		"ANSIBLE_NOCOLOR=1",
		"ANSIBLE_HOST_KEY_CHECKING=False",
		"ANSIBLE_SSH_RETRIES=3",
		"ANSIBLE_LOCAL_TEMP=/tmp/ansible_local_tmp",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		r.fail(run, fmt.Errorf("stdout pipe: %w", err))
		return
	}
	cmd.Stderr = cmd.Stdout // combine, matching STDOUT redirection in the source

	if err := cmd.Start(); err != nil {
		r.fail(run, fmt.Errorf("start ansible-playbook: %w", err))
		return
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		var event types.ProgressEvent
		hasEvent := false
		if event, hasEvent = parseProgress(line); hasEvent {
			event.OpID = run.RunID
			event.Timestamp = time.Now()
		}

		r.mu.Lock()
		run.Output = append(run.Output, line)
		if hasEvent {
			run.ProgressEvents = append(run.ProgressEvents, event)
		}
		r.mu.Unlock()

		if hasEvent && r.sink != nil {
			r.sink.Publish(run.RunID, event)
		}
	}

	waitErr := cmd.Wait()
	finished := time.Now()

	r.mu.Lock()
	run.FinishedAt = &finished
	if waitErr == nil {
		run.State = types.PlaybookSucceeded
		run.ReturnCode = 0
	} else if exitErr, ok := waitErr.(*exec.ExitError); ok {
		run.State = types.PlaybookFailed
		run.ReturnCode = exitErr.ExitCode()
	} else {
		run.State = types.PlaybookFailed
		run.ReturnCode = -1
		run.Output = append(run.Output, fmt.Sprintf("Error: %v", waitErr))
	}
	r.mu.Unlock()

	switch {
	case waitErr == nil:
		logger.Info().Msg("playbook run completed successfully")
	case run.State == types.PlaybookFailed && run.ReturnCode >= 0:
		logger.Error().Int("return_code", run.ReturnCode).Msg("playbook run failed")
	default:
		logger.Error().Err(waitErr).Msg("playbook run errored")
	}
}

func (r *Runner) fail(run *types.PlaybookRun, err error) *types.PlaybookRun {
	now := time.Now()
	r.mu.Lock()
	run.State = types.PlaybookFailed
	run.ReturnCode = -1
	run.Output = append(run.Output, fmt.Sprintf("Error: %v", err))
	run.FinishedAt = &now
	r.mu.Unlock()
	return run
}

// Get returns a snapshot of a previously started or completed run. The
// copy is taken under the same lock execute() mutates the run's fields
// under, so the returned value is safe to read (and marshal to JSON)
// without racing a still-running execution.
func (r *Runner) Get(runID string) (*types.PlaybookRun, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[runID]
	if !ok {
		return nil, false
	}
	snapshot := *run
	snapshot.Output = append([]string(nil), run.Output...)
	snapshot.ProgressEvents = append([]types.ProgressEvent(nil), run.ProgressEvents...)
	return &snapshot, true
}

func buildAnsibleArgs(inventoryPath, playbookPath string, limit, tags []string, extraVars map[string]string, checkMode bool) []string {
	args := []string{"-i", inventoryPath, playbookPath}
	if len(limit) > 0 {
		args = append(args, "--limit", strings.Join(limit, ","))
	}
	if len(tags) > 0 {
		args = append(args, "--tags", strings.Join(tags, ","))
	}
	for k, v := range extraVars {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
	}
	if checkMode {
		args = append(args, "--check")
	}
	return args
}

func findAnsiblePlaybook() (string, error) {
	if path, err := exec.LookPath("ansible-playbook"); err == nil {
		return path, nil
	}
	for _, candidate := range []string{"/usr/bin/ansible-playbook", "/usr/local/bin/ansible-playbook"} {
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("ansible-playbook not found on PATH")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
