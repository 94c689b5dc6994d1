package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"inventory-ledger/core/reconcile"
	"inventory-ledger/feature/integrity/checks"
	"inventory-ledger/feature/inventory"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// colorEnabled reports whether f is an interactive terminal.
func colorEnabled(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newTable(w io.Writer, title string, colorize bool) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	if colorize {
		tw.Style().Color.Header = text.Colors{text.Bold}
	}
	tw.SetTitle(title)
	return tw
}

// paint wraps s in colors when colorize is set.
func paint(s string, colorize bool, colors ...text.Color) string {
	if !colorize {
		return s
	}
	return text.Colors(colors).Sprint(s)
}

// renderResult prints the outcome of one event: status, plan and alert.
func renderResult(w io.Writer, res *inventory.Result, colorize bool) {
	status := "COMMITTED"
	statusColor := text.FgGreen
	switch {
	case res.Skipped:
		status, statusColor = "SKIPPED", text.FgYellow
	case res.DryRun:
		status, statusColor = "DRY RUN", text.FgCyan
	case res.Declined:
		status, statusColor = "DECLINED", text.FgYellow
	case !res.Committed:
		status, statusColor = "NOT COMMITTED", text.FgRed
	}
	renderOutcome(w, res, status, statusColor, colorize)
}

// renderPreview shows a plan that is waiting on the commit prompt.
func renderPreview(w io.Writer, res *inventory.Result, colorize bool) {
	renderOutcome(w, res, "AWAITING CONFIRMATION", text.FgCyan, colorize)
}

func renderOutcome(w io.Writer, res *inventory.Result, status string, statusColor text.Color, colorize bool) {
	head := newTable(w, "Event", colorize)
	head.AppendRows([]table.Row{
		{"Object", res.Event.Key()},
		{"Owner", res.Identity.UserID},
		{"Device", res.Identity.DeviceID},
		{"Status", paint(status, colorize, statusColor)},
	})
	if res.Skipped {
		head.AppendRow(table.Row{"Reason", res.SkipReason})
	}
	head.Render()

	if res.Outcome == nil || res.Outcome.Plan == nil {
		return
	}
	plan := res.Outcome.Plan

	mt := newTable(w, "Mutations", colorize)
	mt.AppendHeader(table.Row{"#", "Type", "Record", "Observation", "Category", "Score"})
	for i, m := range plan.Mutations {
		score := ""
		if m.Score > 0 {
			score = strconv.FormatFloat(m.Score, 'f', 3, 64)
		}
		mt.AppendRow(table.Row{i + 1, m.Type, m.RecordID, m.Observation.Name, m.Observation.Category, score})
	}
	mt.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	mt.AppendFooter(table.Row{"", "", "", "", "Observed", plan.Summary.Observed})
	mt.Render()

	if len(plan.Unresolved) > 0 {
		ut := newTable(w, "Unresolved Removals", colorize)
		ut.AppendHeader(table.Row{"Name", "Category"})
		for _, obs := range plan.Unresolved {
			ut.AppendRow(table.Row{obs.Name, obs.Category})
		}
		ut.Render()
	}

	if alert := res.Outcome.Alert; alert != nil {
		fmt.Fprintln(w, paint(
			fmt.Sprintf("Batch alert %s raised with %d changes (status %s)", alert.ID, len(alert.Changes), alert.Status),
			colorize, text.FgYellow, text.Bold,
		))
	}
}

// renderInventory prints a device's ledger rows.
func renderInventory(w io.Writer, deviceID string, records []reconcile.Record, colorize bool) {
	tw := newTable(w, "Inventory of "+deviceID, colorize)
	tw.AppendHeader(table.Row{"ID", "Name", "Category", "Quantity", "Last Detected"})
	total := 0
	for _, r := range records {
		qty := strconv.Itoa(r.Quantity)
		if r.Quantity == 0 {
			qty = paint(qty, colorize, text.FgHiBlack)
		}
		tw.AppendRow(table.Row{r.ID, r.Name, r.Category, qty, r.LastDetected.UTC().Format(time.RFC3339)})
		total += r.Quantity
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 4, Align: text.AlignRight}})
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d records", len(records)), "", total, ""})
	tw.Render()
}

// renderAlerts prints batch alerts newest first.
func renderAlerts(w io.Writer, alerts []reconcile.Alert, colorize bool) {
	tw := newTable(w, "Batch Alerts", colorize)
	tw.AppendHeader(table.Row{"ID", "Device", "Timestamp", "Status", "Changes"})
	for _, a := range alerts {
		names := make([]string, 0, len(a.Changes))
		for _, c := range a.Changes {
			names = append(names, string(c.Action)+" "+c.Name)
		}
		tw.AppendRow(table.Row{a.ID, a.DeviceID, a.Timestamp.UTC().Format(time.RFC3339), a.Status, strings.Join(names, ", ")})
	}
	tw.Render()
}

// renderStorageReport prints the bucket scan.
func renderStorageReport(w io.Writer, r *checks.StorageReport, colorize bool) {
	exists := paint("yes", colorize, text.FgGreen)
	if !r.Exists {
		exists = paint("no", colorize, text.FgRed)
	}
	tw := newTable(w, "Storage", colorize)
	tw.AppendRows([]table.Row{
		{"Bucket", r.Bucket},
		{"Exists", exists},
		{"Scanned", r.Scanned},
		{"Recognized", r.Recognized},
		{"Unrecognized", r.Scanned - r.Recognized},
		{"Truncated", r.Truncated},
	})
	tw.Render()

	if len(r.Unrecognized) > 0 {
		ut := newTable(w, "Unrecognized Objects (sample)", colorize)
		for _, key := range r.Unrecognized {
			ut.AppendRow(table.Row{key})
		}
		ut.Render()
	}
}

// renderSchemaReport prints per-table schema drift.
func renderSchemaReport(w io.Writer, r *checks.SchemaReport, colorize bool) {
	tw := newTable(w, "Schema ("+r.Driver+")", colorize)
	tw.AppendHeader(table.Row{"Table", "Status", "Missing Columns", "Type Mismatches"})
	for name, t := range r.Tables {
		status := paint(t.Status, colorize, text.FgGreen)
		if t.Status != "ok" {
			status = paint(t.Status, colorize, text.FgRed)
		}
		tw.AppendRow(table.Row{name, status, strings.Join(t.MissingColumns, ", "), strings.Join(t.TypeMismatches, ", ")})
	}
	tw.SortBy([]table.SortBy{{Number: 1, Mode: table.Asc}})
	tw.Render()

	for _, e := range r.Errors {
		fmt.Fprintln(w, paint("error: "+e, colorize, text.FgRed))
	}
}
