package playbook

import (
	"strings"

	"github.com/autobot/fleetctl/pkg/types"
)

// parseProgress recognizes a handful of task/play names a playbook
// run's own authors chose as progress milestones, and turns them into
// a stage/message pair. Everything else is ordinary output with no
// progress signal. The substrings are transcribed verbatim from the
// playbooks this runner targets — renaming a task in the playbook
// silently stops reporting progress for it rather than erroring.
func parseProgress(line string) (types.ProgressEvent, bool) {
	if strings.Contains(line, "TASK [") && strings.Contains(line, "[PLAY ") {
		taskStart := strings.Index(line, "TASK [")
		rest := line[taskStart+len("TASK ["):]
		taskName := rest
		if idx := strings.Index(rest, "]"); idx >= 0 {
			taskName = rest[:idx]
		}

		if strings.Contains(line, "[PLAY 1]") {
			if ev, ok := parsePlay1Task(taskName); ok {
				return ev, true
			}
		} else if strings.Contains(line, "[PLAY 2]") {
			if ev, ok := parsePlay2Task(taskName); ok {
				return ev, true
			}
		}
	}

	if strings.Contains(line, "PLAY [") {
		return parsePlayLine(line)
	}

	return types.ProgressEvent{}, false
}

func parsePlay1Task(taskName string) (types.ProgressEvent, bool) {
	switch {
	case strings.Contains(taskName, "Starting SLM Server"):
		return event("slm_starting", "Preparing SLM server update..."), true
	case strings.Contains(taskName, "Sync autobot-slm-backend"):
		return event("slm_syncing", "Syncing SLM backend code..."), true
	case strings.Contains(taskName, "Restart autobot-slm-backend"):
		return event("slm_restarting", "Restarting SLM backend (expect brief disconnect)..."), true
	case strings.Contains(taskName, "Wait for SLM backend"):
		return event("slm_waiting", "Waiting for SLM backend to stabilize..."), true
	case strings.Contains(taskName, "SLM Server Update Complete"):
		return event("slm_complete", "SLM server update complete"), true
	}
	return types.ProgressEvent{}, false
}

func parsePlay2Task(taskName string) (types.ProgressEvent, bool) {
	switch {
	case strings.Contains(taskName, "Starting Node Update"):
		return event("nodes_starting", "Starting infrastructure node updates..."), true
	case strings.Contains(taskName, "Backend | Sync"):
		return event("node_backend", "Syncing backend node code..."), true
	case strings.Contains(taskName, "Frontend | Sync"):
		return event("node_frontend", "Syncing frontend node code..."), true
	case strings.Contains(taskName, "NPU | Sync"):
		return event("node_npu", "Syncing NPU worker code..."), true
	case strings.Contains(taskName, "Browser | Sync"):
		return event("node_browser", "Syncing browser automation code..."), true
	case strings.Contains(taskName, "Node Update Complete"):
		return event("node_complete", "Node update complete"), true
	}
	return types.ProgressEvent{}, false
}

func parsePlayLine(line string) (types.ProgressEvent, bool) {
	switch {
	case strings.Contains(line, "Play 1 - Update SLM Server First"):
		return event("play1_start", "Play 1: Updating SLM server first..."), true
	case strings.Contains(line, "Play 2 - Update Other Infrastructure"):
		return event("play2_start", "Play 2: Updating infrastructure nodes..."), true
	case strings.Contains(line, "Fleet Update Summary"):
		return event("complete", "Fleet update complete"), true
	}
	return types.ProgressEvent{}, false
}

func event(stage, message string) types.ProgressEvent {
	return types.ProgressEvent{Stage: stage, Message: message}
}
