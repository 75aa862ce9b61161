package cmd

import (
	"context"
	"fmt"
	"time"

	"gearsync/core/config"
	"gearsync/core/database"
	"gearsync/core/logger"
	"gearsync/core/storage"

	"gearsync/feature/audit"
	"gearsync/feature/hub"
	"gearsync/feature/reconcile"
	"gearsync/feature/sync"
	"gearsync/feature/tracker"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	windowMinutes int
	dryRunSync    bool
)

// syncCmd runs a single reconciliation cycle and exits.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one reconciliation cycle",
	Long:  `Pulls both platforms, reconciles, pushes both directions once, then exits.`,
	RunE:  runSyncCycle,
}

func init() {
	syncCmd.Flags().IntVar(&windowMinutes, "window-minutes", 0, "Pull window in minutes (default: configured window)")
	syncCmd.Flags().BoolVar(&dryRunSync, "dry-run", false, "Log outbound payloads without sending them")
	RootCmd.AddCommand(syncCmd)
}

func runSyncCycle(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	if dryRunSync {
		cfg.Sync.DryRun = true
	}

	window := cfg.Sync.Window()
	if windowMinutes > 0 {
		window = time.Duration(windowMinutes) * time.Minute
	}

	l.Info("Starting sync cycle",
		zap.Duration("window", window),
		zap.Bool("dry_run", cfg.Sync.DryRun))

	// Optional audit database
	var store *audit.Store
	if db, err := database.Connect(cfg.Database); err != nil {
		l.Warn("Optional audit database connection failed", zap.Error(err))
	} else {
		store = audit.NewStore(db)
		if err := store.Migrate(); err != nil {
			return fmt.Errorf("failed to migrate audit database: %w", err)
		}
	}

	// Optional payload archive
	var archive *audit.Archive
	if cfg.Storage.Endpoint != "" {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
		archive = audit.NewArchive(client, cfg.Storage.Bucket)
		if err := archive.EnsureBucket(ctx); err != nil {
			l.Warn("Payload archive unavailable", zap.Error(err))
			archive = nil
		}
	}

	driver := sync.NewDriver(&cfg.Sync,
		hub.NewClient(&cfg.Hub, l),
		[]sync.TrackerAPI{tracker.NewClient(&cfg.Tracker, l)},
		reconcile.NewResolver(l),
		reconcile.NewArbiter(cfg.Sync.Grace(), l),
		reconcile.NewBuilder(cfg.Hub.ShareList(), l),
		l)

	var recorder sync.Recorder
	var archiver sync.Archiver
	if store != nil {
		recorder = store
	}
	if archive != nil {
		archiver = archive
	}
	driver.WithAudit(recorder, archiver)

	results := driver.Run(ctx, time.Now().UTC().Add(-window))
	printCycleReport(l, results)

	return nil
}

// printCycleReport prints a formatted cycle report using logger.
func printCycleReport(l *zap.Logger, results []sync.CycleResult) {
	for _, r := range results {
		fields := []zap.Field{
			zap.String("destination", r.Destination),
			zap.Duration("duration", r.FinishedAt.Sub(r.StartedAt)),
			zap.Int("hub_sets", r.HubSets),
			zap.Int("tracker_gear", r.TrackerGear),
			zap.Int("payloads", r.Payloads),
			zap.Int("succeeded", r.Succeeded),
			zap.Int("failed", r.Failed),
			zap.Int("sets_updated_in_hub", r.SetsUpdated),
			zap.Int("skipped_retrieved_missing", r.Counters.SkippedRetrievedMissing),
			zap.Int("skipped_cross_set_conflict", r.Counters.SkippedCrossSetConflict),
			zap.Int("matched_consistent", r.Counters.MatchedConsistent),
		}

		if r.Error != "" {
			fields = append(fields, zap.String("error", r.Error))
			l.Error("Cycle report", fields...)
			continue
		}
		l.Info("Cycle report", fields...)
	}
}
