package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autobot/fleetctl/pkg/security"
	"github.com/autobot/fleetctl/pkg/types"
)

var credentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Manage node credentials held in the vault",
}

var (
	credNodeID string
	credName   string
	credSecret string

	credIssueToken bool
	credExpiringDays int
)

var credentialCreateCmd = &cobra.Command{
	Use:   "create <SSH|TLS|VNC>",
	Short: "Create a credential for a node",
	Args:  cobra.ExactArgs(1),
	RunE:  runCredentialCreate,
}

var credentialConnectionCmd = &cobra.Command{
	Use:   "connection <credential-id>",
	Short: "Fetch connection info for a credential",
	Args:  cobra.ExactArgs(1),
	RunE:  runCredentialConnection,
}

var credentialExchangeCmd = &cobra.Command{
	Use:   "exchange <token>",
	Short: "Redeem a one-time connection token for plaintext credential fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runCredentialExchange,
}

var credentialExpiringCmd = &cobra.Command{
	Use:   "expiring",
	Short: "List TLS credentials expiring within a window",
	RunE:  runCredentialExpiring,
}

func init() {
	credentialCreateCmd.Flags().StringVar(&credNodeID, "node", "", "owning node ID (required)")
	credentialCreateCmd.Flags().StringVar(&credName, "name", "", "credential name (required)")
	credentialCreateCmd.Flags().StringVar(&credSecret, "secret", "", "plaintext secret field, e.g. private_key or password")
	_ = credentialCreateCmd.MarkFlagRequired("node")
	_ = credentialCreateCmd.MarkFlagRequired("name")

	credentialConnectionCmd.Flags().BoolVar(&credIssueToken, "token", false, "also issue a one-time connection token")

	credentialExpiringCmd.Flags().IntVar(&credExpiringDays, "days", 30, "expiry window in days")

	credentialCmd.AddCommand(credentialCreateCmd)
	credentialCmd.AddCommand(credentialConnectionCmd)
	credentialCmd.AddCommand(credentialExchangeCmd)
	credentialCmd.AddCommand(credentialExpiringCmd)
}

func runCredentialCreate(cmd *cobra.Command, args []string) error {
	c := newAPIClient(apiAddr(cmd))

	body := struct {
		NodeID string                   `json:"node_id"`
		Name   string                   `json:"name"`
		Fields security.PlaintextFields `json:"fields"`
	}{
		NodeID: credNodeID,
		Name:   credName,
		Fields: security.PlaintextFields{"secret": credSecret},
	}

	var cred types.Credential
	if err := c.post("/credentials/"+args[0], body, &cred); err != nil {
		return err
	}
	fmt.Printf("created credential %s (%s) for node %s\n", cred.ID, cred.Type, cred.NodeID)
	return nil
}

func runCredentialConnection(cmd *cobra.Command, args []string) error {
	c := newAPIClient(apiAddr(cmd))

	path := fmt.Sprintf("/credentials/%s/connection", args[0])
	if credIssueToken {
		path += "?token=true"
	}

	var info security.ConnectionInfo
	if err := c.get(path, &info); err != nil {
		return err
	}
	fmt.Printf("%+v\n", info)
	return nil
}

func runCredentialExchange(cmd *cobra.Command, args []string) error {
	c := newAPIClient(apiAddr(cmd))

	body := struct {
		Token string `json:"token"`
	}{Token: args[0]}

	var fields security.PlaintextFields
	if err := c.post("/credentials/exchange", body, &fields); err != nil {
		return err
	}
	for k, v := range fields {
		fmt.Printf("%s=%s\n", k, v)
	}
	return nil
}

func runCredentialExpiring(cmd *cobra.Command, args []string) error {
	c := newAPIClient(apiAddr(cmd))

	path := fmt.Sprintf("/credentials/tls/expiring?days=%d", credExpiringDays)
	var creds []types.Credential
	if err := c.get(path, &creds); err != nil {
		return err
	}
	if len(creds) == 0 {
		fmt.Println("no TLS credentials expiring in that window")
		return nil
	}
	for _, cred := range creds {
		days := 0
		if cred.TLS != nil {
			days = cred.TLS.DaysUntilExpiry()
		}
		fmt.Printf("%s\t%s\texpires in %d days\n", cred.ID, cred.Name, days)
	}
	return nil
}
</content>
