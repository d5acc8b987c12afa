package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autobot/fleetctl/pkg/types"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage cron-driven sync schedules",
}

var (
	schedCron       string
	schedEnabled    bool
	schedTargetType string
	schedNodes      []string
	schedRestart    bool
	schedStrategy   string
)

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured schedules",
	RunE:  runScheduleList,
}

var scheduleCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleCreate,
}

var scheduleDeleteCmd = &cobra.Command{
	Use:   "delete <schedule-id>",
	Short: "Delete a schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleDelete,
}

var scheduleValidateCmd = &cobra.Command{
	Use:   "validate <cron-expression>",
	Short: "Validate a cron expression and preview its next five firings",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleValidate,
}

func init() {
	scheduleCreateCmd.Flags().StringVar(&schedCron, "cron", "", "cron expression (required)")
	scheduleCreateCmd.Flags().BoolVar(&schedEnabled, "enabled", true, "enable the schedule immediately")
	scheduleCreateCmd.Flags().StringVar(&schedTargetType, "target-type", string(types.TargetAll), "ALL, SPECIFIC, or FILTER")
	scheduleCreateCmd.Flags().StringSliceVar(&schedNodes, "node", nil, "target node ID (repeatable, for SPECIFIC)")
	scheduleCreateCmd.Flags().BoolVar(&schedRestart, "restart", false, "restart services after sync")
	scheduleCreateCmd.Flags().StringVar(&schedStrategy, "restart-strategy", string(types.RestartSequential), "SEQUENTIAL, ROLLING, or PARALLEL")
	_ = scheduleCreateCmd.MarkFlagRequired("cron")

	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleCreateCmd)
	scheduleCmd.AddCommand(scheduleDeleteCmd)
	scheduleCmd.AddCommand(scheduleValidateCmd)
}

func runScheduleList(cmd *cobra.Command, args []string) error {
	c := newAPIClient(apiAddr(cmd))

	var schedules []types.Schedule
	if err := c.get("/schedules", &schedules); err != nil {
		return err
	}
	if len(schedules) == 0 {
		fmt.Println("no schedules configured")
		return nil
	}
	for _, sch := range schedules {
		next := "n/a"
		if sch.NextRun != nil {
			next = sch.NextRun.Format("2006-01-02T15:04:05Z07:00")
		}
		fmt.Printf("%s\t%s\t%s\tenabled=%v\tnext=%s\n", sch.ID, sch.Name, sch.CronExpression, sch.Enabled, next)
	}
	return nil
}

func runScheduleCreate(cmd *cobra.Command, args []string) error {
	c := newAPIClient(apiAddr(cmd))

	body := struct {
		Name             string                `json:"name"`
		CronExpression   string                `json:"cron_expression"`
		Enabled          bool                  `json:"enabled"`
		TargetType       types.TargetType      `json:"target_type"`
		TargetNodes      []string              `json:"target_nodes,omitempty"`
		RestartAfterSync bool                  `json:"restart_after_sync"`
		RestartStrategy  types.RestartStrategy `json:"restart_strategy"`
	}{
		Name:             args[0],
		CronExpression:   schedCron,
		Enabled:          schedEnabled,
		TargetType:       types.TargetType(schedTargetType),
		TargetNodes:      schedNodes,
		RestartAfterSync: schedRestart,
		RestartStrategy:  types.RestartStrategy(schedStrategy),
	}

	var sch types.Schedule
	if err := c.post("/schedules", body, &sch); err != nil {
		return err
	}
	fmt.Printf("created schedule %s (%s)\n", sch.ID, sch.Name)
	return nil
}

func runScheduleDelete(cmd *cobra.Command, args []string) error {
	c := newAPIClient(apiAddr(cmd))

	if err := c.delete("/schedules/" + args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted schedule %s\n", args[0])
	return nil
}

func runScheduleValidate(cmd *cobra.Command, args []string) error {
	c := newAPIClient(apiAddr(cmd))

	body := struct {
		Cron string `json:"cron"`
	}{Cron: args[0]}

	var resp struct {
		Valid       bool     `json:"valid"`
		Description string   `json:"description,omitempty"`
		Next5Runs   []string `json:"next_5_runs,omitempty"`
	}
	if err := c.post("/schedules/validate", body, &resp); err != nil {
		return err
	}
	if !resp.Valid {
		fmt.Println("invalid cron expression")
		return nil
	}
	fmt.Println(resp.Description)
	for _, run := range resp.Next5Runs {
		fmt.Println("  ", run)
	}
	return nil
}
</content>
