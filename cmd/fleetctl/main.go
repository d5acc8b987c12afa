package main

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/autobot/fleetctl/pkg/config"
	"github.com/autobot/fleetctl/pkg/log"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fleetctl",
	Short: "fleetctl - a fleet control plane for syncing code and managing nodes over SSH",
	Long: `fleetctl distributes source trees to a fleet of nodes over rsync-over-SSH,
runs Ansible playbooks against them, and holds the credential vault and
schedule/playbook state for the fleet. It runs as a single control-plane
process with a BoltDB store; there is no distributed consensus layer.`,
	Version: Version,
}

// cfg is the parsed environment configuration, populated in
// cobra.OnInitialize before any subcommand's RunE runs.
var cfg *config.Config

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"fleetctl version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("api-addr", "http://127.0.0.1:8080", "fleetctl API address, for non-serve subcommands")

	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(nodeCmd)
	rootCmd.AddCommand(roleCmd)
	rootCmd.AddCommand(credentialCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(playbookCmd)
}

func initConfig() {
	loaded, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg = loaded

	log.Init(log.Config{
		Level:      log.Level(cfg.LogLevel),
		JSONOutput: cfg.LogJSON,
	})
}

// decodeEncryptionKey base64-decodes ENCRYPTION_KEY into the 32 raw
// bytes pkg/security.NewVault requires.
func decodeEncryptionKey(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is not set")
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

func apiAddr(cmd *cobra.Command) string {
	addr, _ := cmd.Flags().GetString("api-addr")
	return addr
}
</content>
