package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autobot/fleetctl/pkg/types"
)

var playbookCmd = &cobra.Command{
	Use:   "playbook",
	Short: "Run Ansible playbooks and inspect their progress",
}

var (
	pbTargets   []string
	pbTags      []string
	pbCheckMode bool
)

var playbookRunCmd = &cobra.Command{
	Use:   "run <playbook-name>",
	Short: "Start a playbook run and print its run_id",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaybookRun,
}

var playbookStatusCmd = &cobra.Command{
	Use:   "status <run-id>",
	Short: "Show the current state and output of a playbook run",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaybookStatus,
}

func init() {
	playbookRunCmd.Flags().StringSliceVar(&pbTargets, "target", nil, "limit to this node or role (repeatable)")
	playbookRunCmd.Flags().StringSliceVar(&pbTags, "tag", nil, "Ansible tag to run (repeatable)")
	playbookRunCmd.Flags().BoolVar(&pbCheckMode, "check", false, "run in Ansible check mode")

	playbookCmd.AddCommand(playbookRunCmd)
	playbookCmd.AddCommand(playbookStatusCmd)
}

func runPlaybookRun(cmd *cobra.Command, args []string) error {
	c := newAPIClient(apiAddr(cmd))

	body := struct {
		Targets   []string `json:"targets,omitempty"`
		Tags      []string `json:"tags,omitempty"`
		CheckMode bool     `json:"check_mode,omitempty"`
	}{
		Targets:   pbTargets,
		Tags:      pbTags,
		CheckMode: pbCheckMode,
	}

	var resp struct {
		RunID string `json:"run_id"`
	}
	if err := c.post("/playbooks/"+args[0]+"/run", body, &resp); err != nil {
		return err
	}
	fmt.Println(resp.RunID)
	return nil
}

func runPlaybookStatus(cmd *cobra.Command, args []string) error {
	c := newAPIClient(apiAddr(cmd))

	var run types.PlaybookRun
	if err := c.get("/playbooks/runs/"+args[0], &run); err != nil {
		return err
	}

	fmt.Printf("state=%s return_code=%d\n", run.State, run.ReturnCode)
	for _, line := range run.Output {
		fmt.Println(line)
	}
	return nil
}
</content>
