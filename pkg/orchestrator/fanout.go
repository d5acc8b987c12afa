package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/autobot/fleetctl/pkg/log"
	"github.com/autobot/fleetctl/pkg/types"
)

// nodePacingInterval is the minimum sleep between nodes under ROLLING.
const nodePacingInterval = types.RollingPaceInterval

// nodeOutcome is one candidate node's sync result, for logging and for
// deriving the schedule's overall outcome.
type nodeOutcome struct {
	nodeID  string
	success bool
	message string
}

// ExecuteSchedule resolves sch's candidate nodes, syncs every role
// each one carries at commit, and paces or parallelizes the fan-out
// per sch.RestartStrategy. Nodes are visited in registry list order
// (ordering guarantee, spec §6); PARALLEL drops that ordering in
// exchange for concurrency.
func (o *Orchestrator) ExecuteSchedule(ctx context.Context, sch *types.Schedule, commit string) (bool, string) {
	logger := log.WithScheduleID(sch.ID)

	nodes, err := o.registry.CandidatesForSchedule(sch)
	if err != nil {
		return false, fmt.Sprintf("failed to resolve candidates: %v", err)
	}
	if len(nodes) == 0 {
		return true, "No outdated nodes"
	}

	var outcomes []nodeOutcome
	switch sch.RestartStrategy {
	case types.RestartParallel:
		outcomes = o.fanOutParallel(ctx, nodes, sch, commit)
	default: // SEQUENTIAL and ROLLING both visit nodes in order
		outcomes = o.fanOutSequential(ctx, nodes, sch, commit, sch.RestartStrategy == types.RestartRolling)
	}

	success, failed := 0, 0
	for _, oc := range outcomes {
		if oc.success {
			success++
		} else {
			failed++
			logger.Warn().Str("node_id", oc.nodeID).Str("result", oc.message).Msg("schedule sync failed for node")
		}
	}

	switch {
	case failed == 0:
		return true, fmt.Sprintf("synced %d node(s)", len(outcomes))
	case success > 0:
		return true, fmt.Sprintf("Synced %d/%d nodes (%d failed)", success, len(outcomes), failed)
	default:
		return false, fmt.Sprintf("%d of %d node(s) failed", failed, len(outcomes))
	}
}

func (o *Orchestrator) fanOutSequential(ctx context.Context, nodes []*types.Node, sch *types.Schedule, commit string, pace bool) []nodeOutcome {
	outcomes := make([]nodeOutcome, 0, len(nodes))
	for i, node := range nodes {
		outcomes = append(outcomes, o.syncNodeAllRoles(ctx, node, commit, sch.RestartAfterSync))
		if pace && i < len(nodes)-1 {
			time.Sleep(nodePacingInterval)
		}
	}
	return outcomes
}

func (o *Orchestrator) fanOutParallel(ctx context.Context, nodes []*types.Node, sch *types.Schedule, commit string) []nodeOutcome {
	outcomes := make([]nodeOutcome, len(nodes))
	var wg sync.WaitGroup
	for i, node := range nodes {
		wg.Add(1)
		go func(i int, n *types.Node) {
			defer wg.Done()
			outcomes[i] = o.syncNodeAllRoles(ctx, n, commit, sch.RestartAfterSync)
		}(i, node)
	}
	wg.Wait()
	return outcomes
}

// syncNodeAllRoles syncs every role node carries, catching per-role
// panics' cousin — errors — so one failing role doesn't abort the
// others (spec: "catch exceptions per node").
func (o *Orchestrator) syncNodeAllRoles(ctx context.Context, node *types.Node, commit string, restart bool) nodeOutcome {
	assignments, err := o.registry.ListNodeRolesByNode(node.ID)
	if err != nil {
		return nodeOutcome{nodeID: node.ID, success: false, message: fmt.Sprintf("failed to list roles: %v", err)}
	}
	if len(assignments) == 0 {
		return nodeOutcome{nodeID: node.ID, success: true, message: "no roles assigned"}
	}

	allOK := true
	var messages []string
	for _, nr := range assignments {
		ok, msg := o.SyncNodeRole(ctx, node.ID, nr.RoleName, commit, restart)
		if !ok {
			allOK = false
		}
		messages = append(messages, msg)
	}
	return nodeOutcome{nodeID: node.ID, success: allOK, message: fmt.Sprintf("%v", messages)}
}
