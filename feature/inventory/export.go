package inventory

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"inventory-ledger/core/reconcile"

	excelize "github.com/xuri/excelize/v2"
)

const (
	inventorySheet = "Inventory"
	alertsSheet    = "Alerts"
)

var (
	inventoryHeader = []any{"ID", "Name", "Category", "Quantity", "Last Detected", "Device", "Owner"}
	alertsHeader    = []any{"ID", "Timestamp", "Status", "Device", "Owner", "Changes"}
)

// Export writes a device's records and alerts as an xlsx workbook.
func (s *Service) Export(ctx context.Context, deviceID string, w io.Writer) error {
	records, err := s.Inventory(ctx, deviceID)
	if err != nil {
		return err
	}
	alerts, err := s.Alerts(ctx, AlertFilter{DeviceID: deviceID})
	if err != nil {
		return err
	}
	return WriteWorkbook(w, records, alerts)
}

// WriteWorkbook renders records and alerts into two sheets.
func WriteWorkbook(w io.Writer, records []reconcile.Record, alerts []reconcile.Alert) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), inventorySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(alertsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.ID, r.Name, r.Category, r.Quantity,
			r.LastDetected.UTC().Format(time.RFC3339), r.DeviceID, r.OwnerID,
		})
	}
	if err := writeRows(f, inventorySheet, inventoryHeader, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, a := range alerts {
		rows = append(rows, []any{
			a.ID, a.Timestamp.UTC().Format(time.RFC3339), a.Status,
			a.DeviceID, a.OwnerID, describeChanges(a.Changes),
		})
	}
	if err := writeRows(f, alertsSheet, alertsHeader, rows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func describeChanges(changes []reconcile.ChangeEntry) string {
	parts := make([]string, len(changes))
	for i, c := range changes {
		parts[i] = fmt.Sprintf("%s %s (%s)", c.Action, c.Name, c.Category)
	}
	return strings.Join(parts, "; ")
}
