package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"inventory-ledger/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixFlag    bool
	scanLimit  int
	jsonOutput bool
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the video bucket and ledger schema",
	Long:  `Checks that the video bucket exists and holds attributable uploads, and that the ledger tables match the expected schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, true)
	},
}

// storageCmd represents the integrity storage command
var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check the video bucket and sample unattributable uploads",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false)
	},
}

// schemaCmd represents the integrity schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the inventory and batch_alerts tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(storageCmd, schemaCmd)

	storageCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the bucket if it is missing")
	storageCmd.Flags().IntVar(&scanLimit, "limit", 1000, "Maximum objects to scan")
	integrityCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Save a detailed JSON report")
}

func runIntegrityChecks(ctx context.Context, runStorage, runSchema bool) error {
	startTime := time.Now()

	rt, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	defer rt.Close()
	logg := rt.logger
	colorize := colorEnabled(os.Stdout)

	svc := integrity.NewService(rt.storage, rt.cfg.Storage.Bucket, rt.cfg.Storage.Region, logg, rt.db)
	report := map[string]any{}

	if runStorage {
		logg.Info("Checking video bucket...", zap.String("bucket", rt.cfg.Storage.Bucket))
		sr, err := svc.CheckStorage(ctx, scanLimit)
		if err != nil {
			return fmt.Errorf("storage check failed: %w", err)
		}

		if !sr.Exists && fixFlag {
			logg.Info("Creating missing bucket...")
			if err := svc.FixStorage(ctx); err != nil {
				return fmt.Errorf("failed to fix storage: %w", err)
			}
			if sr, err = svc.CheckStorage(ctx, scanLimit); err != nil {
				return fmt.Errorf("storage check failed: %w", err)
			}
		} else if !sr.Exists {
			logg.Info("Run with --fix to create the bucket.")
		}

		renderStorageReport(os.Stdout, sr, colorize)
		report["storage"] = sr
	}

	if runSchema {
		logg.Info("Checking ledger schema...", zap.String("driver", rt.cfg.Database.Driver))
		sc, err := svc.CheckSchema()
		switch {
		case errors.Is(err, integrity.ErrNoDatabase):
			logg.Warn("Schema check skipped: no database connection")
		case err != nil:
			return fmt.Errorf("schema check failed: %w", err)
		default:
			renderSchemaReport(os.Stdout, sc, colorize)
			report["schema"] = sc
			if !sc.Matched {
				logg.Warn("Ledger schema mismatches found")
			}
		}
	}

	if jsonOutput {
		filename := fmt.Sprintf("integrity_%d.json", startTime.Unix())
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		if err := os.WriteFile(filename, data, 0644); err != nil {
			return fmt.Errorf("failed to save JSON file: %w", err)
		}
		logg.Info("Detailed JSON report saved", zap.String("file", filename))
	}

	logg.Info("Integrity checks completed", zap.Duration("execution_time", time.Since(startTime)))
	return nil
}
