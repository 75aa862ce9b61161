package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gearsync/core/config"
	"gearsync/core/database"
	"gearsync/core/loader"
	"gearsync/core/logger"
	"gearsync/core/middleware/auth"
	"gearsync/core/middleware/rayid"
	"gearsync/core/storage"

	"gearsync/feature/audit"
	"gearsync/feature/hub"
	"gearsync/feature/reconcile"
	"gearsync/feature/status"
	"gearsync/feature/sync"
	"gearsync/feature/tracker"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the gear sync service",
	Long:  `Starts the HTTP server, the interval scheduler and all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Audit Database (Optional)
		var store *audit.Store
		if db, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional audit database connection failed", zap.Error(err))
		} else {
			store = audit.NewStore(db)
			if err := store.Migrate(); err != nil {
				logg.Fatal("Failed to migrate audit database", zap.Error(err))
			}
			logg.Info("Connected to audit database")
		}

		// 4. Initialize Payload Archive (Optional)
		var archive *audit.Archive
		if cfg.Storage.Endpoint != "" {
			client, err := storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
			archive = audit.NewArchive(client, cfg.Storage.Bucket)
			if err := archive.EnsureBucket(cmd.Context()); err != nil {
				logg.Warn("Payload archive unavailable", zap.Error(err))
				archive = nil
			}
		}

		// 5. Build the Sync Driver
		hubClient := hub.NewClient(&cfg.Hub, logg)
		trackerClient := tracker.NewClient(&cfg.Tracker, logg)

		driver := sync.NewDriver(&cfg.Sync,
			hubClient,
			[]sync.TrackerAPI{trackerClient},
			reconcile.NewResolver(logg),
			reconcile.NewArbiter(cfg.Sync.Grace(), logg),
			reconcile.NewBuilder(cfg.Hub.ShareList(), logg),
			logg)
		if store != nil || archive != nil {
			var recorder sync.Recorder
			var archiver sync.Archiver
			if store != nil {
				recorder = store
			}
			if archive != nil {
				archiver = archive
			}
			driver.WithAudit(recorder, archiver)
		}

		service := status.NewService(driver, &cfg.Sync, store, logg)

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 7. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(status.NewFeature(service))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 8. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 9. Start the interval scheduler
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go service.RunLoop(ctx)

		// 10. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 11. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		cancel()
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
