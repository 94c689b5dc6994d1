package cmd

import (
	"fmt"
	"os"

	"inventory-ledger/feature/inventory"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportOutput string
	alertDevice  string
	alertStatus  string
	alertLimit   int
)

// inventoryCmd groups read-only ledger queries.
var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Inspect the inventory ledger",
}

var inventoryListCmd = &cobra.Command{
	Use:   "list <deviceId>",
	Short: "List the records of a device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer rt.Close()

		records, err := rt.readService().Inventory(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to list inventory: %w", err)
		}
		renderInventory(os.Stdout, args[0], records, colorEnabled(os.Stdout))
		return nil
	},
}

var inventoryExportCmd = &cobra.Command{
	Use:   "export <deviceId>",
	Short: "Export the records and alerts of a device to an xlsx workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer rt.Close()

		out := exportOutput
		if out == "" {
			out = fmt.Sprintf("inventory_%s.xlsx", args[0])
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		if err := rt.readService().Export(cmd.Context(), args[0], f); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to export inventory: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}

		rt.logger.Info("Inventory exported", zap.String("device", args[0]), zap.String("file", out))
		return nil
	},
}

var inventoryAlertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List batch alerts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer rt.Close()

		alerts, err := rt.readService().Alerts(cmd.Context(), inventory.AlertFilter{
			DeviceID: alertDevice,
			Status:   alertStatus,
			Limit:    alertLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to list alerts: %w", err)
		}
		renderAlerts(os.Stdout, alerts, colorEnabled(os.Stdout))
		return nil
	},
}

func init() {
	inventoryCmd.AddCommand(inventoryListCmd, inventoryExportCmd, inventoryAlertsCmd)

	inventoryExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default inventory_<deviceId>.xlsx)")
	inventoryAlertsCmd.Flags().StringVar(&alertDevice, "device", "", "Only alerts of this device")
	inventoryAlertsCmd.Flags().StringVar(&alertStatus, "status", "", "Only alerts with this status")
	inventoryAlertsCmd.Flags().IntVar(&alertLimit, "limit", 50, "Maximum number of alerts")

	RootCmd.AddCommand(inventoryCmd)
}
