package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"inventory-ledger/feature/inventory"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRunEvent   bool
	yesConfirm    bool
	eventMetadata map[string]string
	skipStat      bool
)

// reconcileCmd is the parent command for manual reconciliation.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the ledger against uploaded videos",
	Long: `Replays uploads through the same pipeline the server runs for bucket events.
Useful to backfill missed notifications or to preview what an upload would change.`,
}

// eventReconcileCmd processes one uploaded object.
var eventReconcileCmd = &cobra.Command{
	Use:   "event <bucket> <object>",
	Short: "Process one uploaded video (report, then optionally commit)",
	Long: `Analyzes one uploaded video and applies the resulting inventory changes.

Owner and device come from the object metadata (userId, deviceId) or its path
(users/{user}/devices/{device}/... or uploads/{user}/{device}/...).

Examples:
  # Preview changes without writing
  reconcile event videos users/u1/devices/fridge-1/clip.mp4 --dry-run

  # Commit with auto-confirm (non-interactive)
  reconcile event videos uploads/u1/fridge-1/clip.mp4 --yes

  # Override metadata instead of reading it from storage
  reconcile event videos clip.mp4 --metadata userId=u1 --metadata deviceId=fridge-1 --yes`,
	Args: cobra.ExactArgs(2),
	RunE: runEventReconcile,
}

func init() {
	reconcileCmd.AddCommand(eventReconcileCmd)

	eventReconcileCmd.Flags().BoolVar(&dryRunEvent, "dry-run", false, "Plan only, never write to the ledger")
	eventReconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm the commit (non-interactive)")
	eventReconcileCmd.Flags().StringToStringVar(&eventMetadata, "metadata", nil, "Object metadata as key=value (repeatable)")
	eventReconcileCmd.Flags().BoolVar(&skipStat, "no-stat", false, "Do not read object metadata from storage")

	RootCmd.AddCommand(reconcileCmd)
}

func runEventReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer rt.Close()
	l := rt.logger

	ev := inventory.Event{Bucket: args[0], Name: args[1], Metadata: map[string]string{}}

	if !skipStat {
		info, err := rt.storage.StatObject(ctx, ev.Bucket, ev.Name, minio.StatObjectOptions{})
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", ev.Key(), err)
		}
		for k, v := range info.UserMetadata {
			ev.Metadata[k] = v
		}
	}
	for k, v := range eventMetadata {
		ev.Metadata[k] = v
	}

	svc, err := rt.inventoryService(ctx)
	if err != nil {
		return err
	}

	colorize := colorEnabled(os.Stdout)
	opts := inventory.Options{DryRun: dryRunEvent}
	previewed := false
	if !dryRunEvent {
		// The prompt comes after analysis so the user sees what will be written.
		opts.Confirm = func(res *inventory.Result) bool {
			previewed = true
			renderPreview(os.Stdout, res, colorize)
			return confirmCommit(res.Event)
		}
	}

	l.Info("Processing event", zap.String("object", ev.Key()), zap.Bool("dry_run", dryRunEvent))
	res, err := svc.HandleEvent(ctx, ev, opts)
	if err != nil {
		return fmt.Errorf("failed to process %s: %w", ev.Key(), err)
	}

	switch {
	case res.Declined:
		l.Warn("Operation cancelled by user. No changes were made.")
	case previewed:
		l.Info("Committed ledger changes", zap.String("object", ev.Key()), zap.Int("mutations", len(res.Outcome.Plan.Mutations)))
	default:
		renderResult(os.Stdout, res, colorize)
	}

	if dryRunEvent {
		l.Info("Dry-run mode: No changes were made.")
	}
	return nil
}

// confirmCommit prompts the user for confirmation or uses --yes flag.
func confirmCommit(ev inventory.Event) bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  Type 'yes' to commit ledger changes for %s: ", ev.Key())
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
