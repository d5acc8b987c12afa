package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autobot/fleetctl/pkg/types"
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Inspect fleet nodes and their role assignments",
}

var nodeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every node in the fleet",
	RunE:  runNodeList,
}

func init() {
	nodeCmd.AddCommand(nodeListCmd)
}

func runNodeList(cmd *cobra.Command, args []string) error {
	c := newAPIClient(apiAddr(cmd))

	var nodes []types.Node
	if err := c.get("/nodes", &nodes); err != nil {
		return err
	}

	if len(nodes) == 0 {
		fmt.Println("no nodes registered")
		return nil
	}
	for _, n := range nodes {
		fmt.Printf("%s\t%s\t%s\t%s\troles=%v\n", n.ID, n.Hostname, n.IPAddress, n.CodeStatus, n.Roles)
	}
	return nil
}
</content>
