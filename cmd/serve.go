package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"archive-manager/core/config"
	"archive-manager/core/database"
	"archive-manager/core/logger"
	"archive-manager/core/middleware/auth"
	"archive-manager/core/middleware/requestid"
	"archive-manager/core/server"
	"archive-manager/core/storage"
	"archive-manager/feature/emulator"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "archive-manager/docs/swagger"
)

// @title Archive API Emulator
// @version 1.0
// @description Emulation of the research data archive REST API for development and testing.
// @host localhost:8080
// @BasePath /

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the archive API emulator",
	Long: `Starts an HTTP server that emulates the archive REST API against a local
database, with file content kept in memory or in object storage.`,
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

		// 3. Connect to Database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		logg.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

		// 4. Initialize the record store and verify the schema
		st, err := emulator.NewStore(db)
		if err != nil {
			logg.Fatal("Failed to initialize record store", zap.Error(err))
		}
		if err := database.HasColumns(db, "archive_records", "id", "parent_id", "metadata", "draft_metadata", "is_published"); err != nil {
			logg.Fatal("Record schema verification failed", zap.Error(err))
		}

		// 5. Initialize the file content store
		if !cfg.Server.IsValidContentStore() {
			logg.Fatal("Invalid content store", zap.String("content_store", cfg.Server.ContentStore))
		}
		var content emulator.ContentStore
		if cfg.Server.ContentStore == server.ContentStoreStorage {
			client, err := storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
			if err := storage.EnsureBucket(cmd.Context(), client, cfg.Storage.Bucket); err != nil {
				logg.Fatal("Failed to ensure storage bucket", zap.Error(err))
			}
			content = emulator.NewObjectStore(client, cfg.Storage.Bucket)
			logg.Info("Storing file content in object storage", zap.String("bucket", cfg.Storage.Bucket))
		} else {
			content = emulator.NewMemoryStore()
			logg.Info("Storing file content in memory")
		}

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// Middleware Registration
		// 1. Request id (must be first to trace everything)
		app.Use(requestid.New())

		// 2. Logging middleware (zap + request id)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRequestID(logg, c)
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

		// 3. Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 4. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 5. Register the emulator routes
		handler := emulator.NewHandler(emulator.NewService(st, content, logg))
		handler.RegisterRoutes(app)

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
