package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/notionscan/internal/config"
	"github.com/nao1215/notionscan/internal/database"
	"github.com/nao1215/notionscan/internal/model"
	"github.com/nao1215/notionscan/internal/report"
	"github.com/spf13/cobra"
)

// NewCompareCmd creates the compare command.
// This command compares scan results stored with --save-history.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [workspace]",
		Short: "Compare scan results with historical data",
		Long: `Compare displays differences between two stored scans of a workspace:
- Pages that became potentially public since the earlier scan
- Pages that are no longer flagged
- Pages whose risk level changed

Scans are stored with 'notionscan scan --save-history'. The workspace argument
may be omitted when the history holds a single workspace.

Examples:
  # Compare the latest two scans
  notionscan compare "Acme Corp"

  # List stored scans of a workspace
  notionscan compare --list "Acme Corp"

  # Compare the latest scan with a specific stored scan
  notionscan compare --with-scan-id 5 "Acme Corp"

  # Compare with the first scan on or after a date
  notionscan compare --since 2026-01-01 "Acme Corp"

  # JSON output
  notionscan compare --json "Acme Corp"

  # List every workspace in the history
  notionscan compare --list-workspaces`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List scan history for the workspace")
	cmd.Flags().BoolP("list-workspaces", "L", false,
		"List all workspaces in the history database")
	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare with a specific scan by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first scan on or after this date (format: YYYY-MM-DD)")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
	cmd.MarkFlagsMutuallyExclusive("with-scan-id", "since")

	return cmd
}

// compareOptions holds the parsed compare flags.
type compareOptions struct {
	workspace      string
	list           bool
	listWorkspaces bool
	withScanID     int64
	since          string
	json           bool
	markdown       bool
	dbDir          string
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseCompareFlags(cmd, args)
	if err != nil {
		return err
	}

	// Validate the date before opening the database.
	var since time.Time
	if opts.since != "" {
		since, err = time.Parse("2006-01-02", opts.since)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}
	}

	db, err := database.Open(opts.dbDir, database.Options{CreateIfNotExists: false})
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if opts.listWorkspaces {
		return listWorkspaces(ctx, out, db)
	}

	workspace, err := resolveWorkspace(ctx, db, opts.workspace, len(args) > 0)
	if err != nil {
		return err
	}

	if opts.list {
		return listScanHistory(ctx, out, db, workspace)
	}

	comparison, err := runComparison(ctx, db, workspace, opts.withScanID, since)
	if err != nil {
		return err
	}

	switch {
	case opts.json:
		return report.WriteComparisonJSON(out, comparison)
	case opts.markdown:
		return report.WriteComparisonMarkdown(out, comparison)
	default:
		return report.WriteComparisonText(out, comparison)
	}
}

func parseCompareFlags(cmd *cobra.Command, args []string) (*compareOptions, error) {
	opts := &compareOptions{}
	flags := cmd.Flags()

	var err error
	if opts.list, err = flags.GetBool("list"); err != nil {
		return nil, err
	}
	if opts.listWorkspaces, err = flags.GetBool("list-workspaces"); err != nil {
		return nil, err
	}
	if opts.withScanID, err = flags.GetInt64("with-scan-id"); err != nil {
		return nil, err
	}
	if opts.since, err = flags.GetString("since"); err != nil {
		return nil, err
	}
	if opts.json, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if opts.markdown, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if opts.dbDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if opts.dbDir == "" {
		opts.dbDir = config.XDGDataDir()
	}
	if len(args) > 0 {
		opts.workspace = args[0]
	}
	return opts, nil
}

// resolveWorkspace returns the named workspace, or the only workspace in the
// history when none was named.
func resolveWorkspace(ctx context.Context, db *database.HistoryDB, name string, named bool) (string, error) {
	if named {
		return name, nil
	}

	workspaces, err := db.ListWorkspaces(ctx)
	if err != nil {
		return "", err
	}
	switch len(workspaces) {
	case 0:
		return "", errors.New("no scan history found (run 'notionscan scan --save-history' first)")
	case 1:
		return workspaces[0], nil
	default:
		return "", fmt.Errorf("several workspaces in history, name one of: %s", strings.Join(quoteAll(workspaces), ", "))
	}
}

// listWorkspaces lists all workspaces with stored scans.
func listWorkspaces(ctx context.Context, w io.Writer, db *database.HistoryDB) error {
	workspaces, err := db.ListWorkspaces(ctx)
	if err != nil {
		return err
	}

	if len(workspaces) == 0 {
		fmt.Fprintln(w, "No scanned workspaces found in the database.")
		fmt.Fprintln(w, "\nUse 'notionscan scan --save-history' to store a scan.")
		return nil
	}

	fmt.Fprintf(w, "Scanned workspaces (%d):\n\n", len(workspaces))
	for _, ws := range workspaces {
		fmt.Fprintf(w, "  • %s\n", displayWorkspace(ws))
	}
	fmt.Fprintln(w, "\nUse 'notionscan compare --list <workspace>' to see its scan history.")
	return nil
}

// listScanHistory lists all stored scans of a workspace.
func listScanHistory(ctx context.Context, w io.Writer, db *database.HistoryDB, workspace string) error {
	metas, err := db.GetScanHistoryWithMetadata(ctx, workspace)
	if err != nil {
		return err
	}

	if len(metas) == 0 {
		fmt.Fprintf(w, "No scan history found for %s\n", displayWorkspace(workspace))
		return nil
	}

	fmt.Fprintf(w, "Scan history for %s (%d scans):\n\n", displayWorkspace(workspace), len(metas))
	fmt.Fprintf(w, "  %-6s  %-20s  %-7s  %s\n", "ID", "Date", "Pages", "Risk Summary")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 60))
	for _, meta := range metas {
		fmt.Fprintf(w, "  %-6d  %-20s  %-7d  %s\n",
			meta.ID,
			meta.Timestamp.Local().Format("2006-01-02 15:04:05"),
			meta.TotalPages,
			formatRiskSummary(meta.RiskSummary),
		)
	}

	fmt.Fprintln(w, "\nUse 'notionscan compare <workspace>' to compare the latest two scans.")
	fmt.Fprintln(w, "Use 'notionscan compare --with-scan-id <id> <workspace>' to compare with a specific scan.")
	return nil
}

// formatRiskSummary formats risk counts as "H:1 M:2".
func formatRiskSummary(s model.RiskSummary) string {
	var parts []string
	if s.High > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", s.High))
	}
	if s.Medium > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", s.Medium))
	}
	if len(parts) == 0 {
		return "No suspicious pages"
	}
	return strings.Join(parts, " ")
}

// runComparison selects the two reports and compares them. The latest scan
// is always the current one.
func runComparison(ctx context.Context, db *database.HistoryDB, workspace string, withScanID int64, since time.Time) (*report.Comparison, error) {
	reports, err := db.GetScanHistory(ctx, workspace)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("no scan history found for %s", displayWorkspace(workspace))
	}
	if len(reports) < 2 && withScanID == 0 && since.IsZero() {
		return nil, fmt.Errorf("at least 2 scans are required for comparison (found %d)", len(reports))
	}

	current := reports[0]
	var previous *model.ScanReport

	switch {
	case withScanID > 0:
		previous, err = db.GetScanReportByID(ctx, withScanID)
		if errors.Is(err, database.ErrReportNotFound) {
			return nil, fmt.Errorf("scan with ID %d not found", withScanID)
		}
		if err != nil {
			return nil, err
		}
		if previous.WorkspaceName != workspace {
			return nil, fmt.Errorf("scan ID %d belongs to %s, not %s",
				withScanID, displayWorkspace(previous.WorkspaceName), displayWorkspace(workspace))
		}
	case !since.IsZero():
		// Reports are newest first; walk backwards to find the oldest match.
		for i := len(reports) - 1; i >= 0; i-- {
			if !reports[i].ScanTimestamp.Before(since) {
				previous = reports[i]
				break
			}
		}
		if previous == nil {
			return nil, fmt.Errorf("no scans found since %s", since.Format("2006-01-02"))
		}
		if previous == current {
			return nil, fmt.Errorf("only one scan found since %s; at least 2 scans are required for comparison",
				since.Format("2006-01-02"))
		}
	default:
		previous = reports[1]
	}

	return report.Compare(previous, current), nil
}

// displayWorkspace names the unnamed workspace.
func displayWorkspace(ws string) string {
	if ws == "" {
		return "(unnamed workspace)"
	}
	return ws
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}
