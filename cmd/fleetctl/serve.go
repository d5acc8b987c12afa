package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/autobot/fleetctl/pkg/api"
	"github.com/autobot/fleetctl/pkg/broadcast"
	"github.com/autobot/fleetctl/pkg/cache"
	"github.com/autobot/fleetctl/pkg/log"
	"github.com/autobot/fleetctl/pkg/metrics"
	"github.com/autobot/fleetctl/pkg/orchestrator"
	"github.com/autobot/fleetctl/pkg/playbook"
	"github.com/autobot/fleetctl/pkg/registry"
	"github.com/autobot/fleetctl/pkg/schedule"
	"github.com/autobot/fleetctl/pkg/security"
	"github.com/autobot/fleetctl/pkg/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fleet control plane server",
	Long: `Start the control-plane process: opens the BoltDB store, seeds the
role catalog, starts the cache retention reconciler and the schedule
executor, and serves the REST API.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := log.WithComponent("serve")

	store, err := storage.NewBoltStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	reg := registry.New(store)
	if cfg.RolesFile != "" {
		n, err := reg.SeedRoleCatalog(cfg.RolesFile)
		if err != nil {
			return fmt.Errorf("seed role catalog: %w", err)
		}
		logger.Info().Int("roles", n).Msg("role catalog seeded")
	}

	encryptionKey, err := decodeEncryptionKey(cfg.EncryptionKey)
	if err != nil {
		return fmt.Errorf("credential vault: %w", err)
	}
	vault, err := security.NewVault(encryptionKey, store)
	if err != nil {
		return fmt.Errorf("credential vault: %w", err)
	}

	cacheMgr, err := cache.New(cfg.CacheRoot, reg)
	if err != nil {
		return fmt.Errorf("cache manager: %w", err)
	}
	maxAge, err := time.ParseDuration(cfg.RetentionMaxAge)
	if err != nil {
		return fmt.Errorf("RETENTION_MAX_AGE %q: %w", cfg.RetentionMaxAge, err)
	}
	retention := cache.NewRetentionReconciler(cacheMgr, cache.RetentionPolicy{
		MaxAge:  maxAge,
		MinKeep: cfg.RetentionMinKeep,
	})
	retention.Start()
	defer retention.Stop()

	orch := orchestrator.New(reg, cacheMgr)

	scheduleExec := schedule.New(store, reg, cacheMgr, orch)
	scheduleExec.Start()
	defer scheduleExec.Stop()

	broker := broadcast.NewBroker()
	if cfg.RedisURL != "" {
		ctx := context.Background()
		relay, err := broadcast.NewRedisRelay(ctx, cfg.RedisURL, broker)
		if err != nil {
			logger.Warn().Err(err).Msg("redis relay unavailable, continuing without cross-process progress relay")
			metrics.RegisterComponent("redis", false, err.Error())
		} else {
			defer relay.Close()
			metrics.RegisterComponent("redis", true, "ready")
		}
	}

	runner := playbook.New(cfg.AnsibleDir, broker)

	collector := metrics.NewCollector(store)
	collector.Start()
	defer collector.Stop()

	metrics.SetVersion(Version)
	metrics.RegisterComponent("storage", true, "ready")
	metrics.RegisterComponent("api", false, "starting")

	server := api.NewServer(store, reg, vault, cacheMgr, orch, runner, broker)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("starting API server")
		if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
			errCh <- fmt.Errorf("API server: %w", err)
		}
	}()
	metrics.UpdateComponent("api", true, "ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info().Msg("shutting down")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	return nil
}
</content>
