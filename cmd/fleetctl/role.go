package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autobot/fleetctl/pkg/types"
)

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Assign or unassign roles on a node",
}

var roleAssignCmd = &cobra.Command{
	Use:   "assign <node-id> <role-name>",
	Short: "Assign a role to a node",
	Args:  cobra.ExactArgs(2),
	RunE:  runRoleAssign,
}

var roleUnassignCmd = &cobra.Command{
	Use:   "unassign <node-id> <role-name>",
	Short: "Remove a role assignment from a node",
	Args:  cobra.ExactArgs(2),
	RunE:  runRoleUnassign,
}

func init() {
	roleCmd.AddCommand(roleAssignCmd)
	roleCmd.AddCommand(roleUnassignCmd)
}

func runRoleAssign(cmd *cobra.Command, args []string) error {
	c := newAPIClient(apiAddr(cmd))

	var nr types.NodeRole
	path := fmt.Sprintf("/nodes/%s/role/%s", args[0], args[1])
	if err := c.post(path, nil, &nr); err != nil {
		return err
	}
	fmt.Printf("assigned %s to %s (status=%s)\n", nr.RoleName, nr.NodeID, nr.Status)
	return nil
}

func runRoleUnassign(cmd *cobra.Command, args []string) error {
	c := newAPIClient(apiAddr(cmd))

	path := fmt.Sprintf("/nodes/%s/role/%s", args[0], args[1])
	if err := c.delete(path); err != nil {
		return err
	}
	fmt.Printf("unassigned %s from %s\n", args[1], args[0])
	return nil
}
</content>
