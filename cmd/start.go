package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"inventory-ledger/core/loader"
	"inventory-ledger/core/logger"
	"inventory-ledger/core/middleware/auth"
	"inventory-ledger/core/middleware/rayid"
	"inventory-ledger/feature/ingest"
	"inventory-ledger/feature/integrity"
	"inventory-ledger/feature/inventory"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "inventory-ledger/docs/swagger"
)

// @title Inventory Ledger API
// @version 1.0
// @description Reconciles per-device inventory from video movement analysis.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the inventory ledger server",
	Long: `Starts the HTTP server and initializes all enabled features.
When ingest is enabled, bucket notifications are consumed as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := bootstrap(ctx, false)
		if err != nil {
			return err
		}
		defer rt.Close()
		zap.ReplaceGlobals(rt.logger)
		logg := rt.logger

		svc, err := rt.inventoryService(ctx)
		if err != nil {
			return err
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ReadTimeout:           rt.cfg.Server.ReadTimeout(),
			BodyLimit:             rt.cfg.Server.BodyLimit(),
		})

		mgr := loader.NewManager(logg)
		mgr.Register(inventory.NewFeature(svc, logg))
		mgr.Register(integrity.NewFeature(rt.storage, rt.cfg.Storage.Bucket, rt.cfg.Storage.Region, logg, rt.db))

		// RayID first so every later log line carries it.
		app.Use(rayid.New())

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

		// Swagger stays public.
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		errCh := make(chan error, 2)

		if rt.cfg.Ingest.Enabled && rt.db != nil {
			listener := ingest.NewListener(rt.storage, rt.cfg.Storage.Bucket, rt.cfg.Ingest, svc, logg)
			go func() {
				if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					errCh <- err
				}
			}()
		} else if rt.cfg.Ingest.Enabled {
			logg.Warn("Ingest enabled but no database is connected; listener not started")
		}

		go func() {
			logg.Info("Starting server", zap.String("address", rt.cfg.Server.Address()))
			if err := app.Listen(rt.cfg.Server.Address()); err != nil {
				errCh <- err
			}
		}()

		select {
		case <-ctx.Done():
			logg.Info("Shutting down server...")
		case err = <-errCh:
			logg.Error("Server stopped unexpectedly", zap.Error(err))
		}

		stop()
		if shutdownErr := app.Shutdown(); shutdownErr != nil {
			logg.Warn("Server shutdown failed", zap.Error(shutdownErr))
		}
		return err
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
