package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/notionscan/internal/classify"
	"github.com/nao1215/notionscan/internal/config"
	"github.com/nao1215/notionscan/internal/database"
	"github.com/nao1215/notionscan/internal/log"
	"github.com/nao1215/notionscan/internal/model"
	"github.com/nao1215/notionscan/internal/notion"
	"github.com/nao1215/notionscan/internal/pipeline"
	"github.com/nao1215/notionscan/internal/probe"
	"github.com/nao1215/notionscan/internal/report"
	"github.com/nao1215/notionscan/internal/transport"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the workspace for potentially public pages",
		Long: `Scan lists every page shared with the integration and flags pages that
show public indicators:

  public_url        Notion reports a public URL for the page
  url_pattern       the page URL contains neither "private" nor "workspace"
  published_site    the page is served from a *.notion.site domain
  anonymous_access  the page loads without signing in (requires --probe)

Two or more indicators mean high risk, one means medium and none low.

The integration token is read from NOTION_TOKEN or from the "token" key of
the configuration file.

Examples:
  # JSON report in the current directory
  notionscan scan -f json

  # JSON and CSV reports (report.json and report.csv)
  notionscan scan -f both -o report.json

  # Also request every page without credentials
  notionscan scan -f json --probe

  # Keep the result for 'notionscan compare'
  notionscan scan -f json --save-history`,
		Args: cobra.NoArgs,
		RunE: runScanCmd,
	}

	addScanFlags(cmd)
	return cmd
}

// addScanFlags registers the scan flags on cmd.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "",
		"Report format: "+strings.Join(model.Formats(), ", ")+" (required)")
	cmd.Flags().StringP("output", "o", config.DefaultOutputPath,
		"Report file path; with 'both' the CSV path replaces the extension with .csv")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .notionscan in current or home directory)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each API request")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of page detail requests in flight")
	cmd.Flags().Bool("probe", false,
		"Request every page URL without credentials (adds the anonymous_access indicator)")
	cmd.Flags().String("summary", config.SummaryText,
		"Console summary style: text, markdown or none")
	cmd.Flags().Bool("save-history", false,
		"Store the report in the history database for 'notionscan compare'")
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, _ []string) error {
	stderr := cmd.ErrOrStderr()

	cfg, err := buildConfig(cmd, os.LookupEnv)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		switch {
		case errors.Is(err, config.ErrInvalidFormat):
			fmt.Fprintln(stderr, cmd.UsageString())
		case errors.Is(err, config.ErrMissingToken):
			printSetupInstructions(stderr)
		}
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(stderr, cfg.Verbose, getBoolFlag(cmd, "log-json"))
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return runScan(ctx, cfg, cmd.OutOrStdout(), stderr, logger)
}

// buildConfig layers defaults, the configuration file, the environment and
// explicitly set flags, in that order.
func buildConfig(cmd *cobra.Command, lookupEnv func(string) (string, bool)) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly given file must exist; the default locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.ApplyEnv(lookupEnv)

	format, err := flags.GetString("format")
	if err != nil {
		return nil, err
	}
	cfg.Format = model.Format(format)

	if cfg.OutputPath, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("probe") {
		if cfg.ProbeEnabled, err = flags.GetBool("probe"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("summary") {
		if cfg.Summary, err = flags.GetString("summary"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("save-history") {
		if cfg.SaveHistory, err = flags.GetBool("save-history"); err != nil {
			return nil, err
		}
	}

	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	return getBoolFlag(cmd, "verbose")
}

// getBoolFlag reads a boolean persistent flag from the command or the root.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// newLogger returns a JSON logger when asked for one, a colored logger on a
// terminal and a plain secure logger for any other writer.
func newLogger(w io.Writer, verbose, jsonLogs bool) *slog.Logger {
	if jsonLogs {
		return log.NewSecureJSONLogger(w, verbose)
	}
	if f, ok := w.(*os.File); ok {
		return log.NewConsoleLogger(f, verbose)
	}
	return log.NewSecureLogger(w, verbose)
}

// runScan performs the scan and writes the reports.
func runScan(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, logger *slog.Logger) error {
	files, err := report.Plan(cfg.Format, cfg.OutputPath)
	if err != nil {
		return err
	}

	apiHTTP, err := transport.NewHTTPClient(transport.Options{
		ProxyURL:    cfg.ProxyURL,
		Timeout:     cfg.Timeout,
		UserAgent:   cfg.UserAgent,
		NoRedirects: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	client := notion.NewClient(cfg.Token,
		notion.WithBaseURL(cfg.APIBaseURL),
		notion.WithAPIVersion(cfg.NotionVersion),
		notion.WithHTTPClient(apiHTTP),
		notion.WithRateLimit(cfg.RateLimit),
		notion.WithRetry(cfg.MaxRetries, cfg.RetryBaseDelay),
		notion.WithLogger(logger),
	)

	settings := pipeline.Settings{
		Source:      client,
		Classifier:  newClassifier(cfg),
		Concurrency: cfg.Concurrency,
		Logger:      logger,
	}

	// IndicatorEnabled is false unless probing is on and the indicator is not disabled.
	if cfg.IndicatorEnabled(model.IndicatorAnonymousAccess) {
		probeHTTP, err := transport.NewHTTPClient(transport.Options{
			ProxyURL:  cfg.ProxyURL,
			Timeout:   cfg.ProbeTimeout,
			UserAgent: cfg.UserAgent,
		})
		if err != nil {
			return fmt.Errorf("failed to create probe client: %w", err)
		}
		settings.Prober = probe.New(probeHTTP, logger)
	}

	var progress *progressLine
	if f, ok := stderr.(*os.File); ok && log.IsTerminal(f) && !cfg.Verbose {
		progress = &progressLine{w: stderr}
		settings.Progress = progress.update
	}

	fmt.Fprintln(stdout, "Starting Notion security scan...")
	fmt.Fprintf(stdout, "Output format: %s\n", strings.ToUpper(string(cfg.Format)))
	fmt.Fprintf(stdout, "Output file:   %s\n\n", cfg.OutputPath)

	scan := pipeline.NewScan(time.Now())
	err = pipeline.NewScanPipeline(settings).Execute(ctx, scan)
	if progress != nil {
		progress.finish()
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			printTroubleshooting(stderr, err)
		}
		return fmt.Errorf("scan failed: %w", err)
	}

	if n := len(scan.Skipped); n > 0 {
		fmt.Fprintf(stdout, "Skipped %d page(s) deleted during the scan.\n", n)
	}

	written, err := report.WriteFiles(scan.Report, cfg.Format, cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.SaveHistory {
		if err := saveHistory(ctx, cfg.DBDir, scan.Report, logger); err != nil {
			return err
		}
	}

	if err := printSummary(stdout, cfg.Summary, cfg.Verbose, scan.Report); err != nil {
		return err
	}

	for i, path := range written {
		fmt.Fprintf(stdout, "%s report: %s\n", strings.ToUpper(string(files[i].Format)), path)
	}

	return nil
}

// newClassifier builds a classifier honoring the disabled indicators.
func newClassifier(cfg *config.Config) *classify.Classifier {
	var disabled []model.Indicator
	for _, ind := range model.AllIndicators() {
		if !cfg.IndicatorEnabled(ind) {
			disabled = append(disabled, ind)
		}
	}
	return classify.New(classify.WithDisabled(disabled...))
}

// saveHistory stores the report in the history database.
func saveHistory(ctx context.Context, dir string, r *model.ScanReport, logger *slog.Logger) error {
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveScanReport(ctx, r)
	if err != nil {
		return err
	}
	logger.Info("saved scan to history", "id", id, "path", db.Path())
	return nil
}

// printSummary writes the console summary in the configured style.
func printSummary(w io.Writer, style string, verbose bool, r *model.ScanReport) error {
	var writer report.Writer
	switch style {
	case config.SummaryNone:
		return nil
	case config.SummaryMarkdown:
		writer = report.NewMarkdownWriter(w)
	default:
		writer = report.NewSimpleWriter(w, report.WithVerbose(verbose))
	}
	_, err := writer.Write(r)
	return err
}

// printSetupInstructions explains how to obtain and configure a token.
func printSetupInstructions(w io.Writer) {
	fmt.Fprintln(w, "A Notion integration token is required.")
	fmt.Fprintln(w, "Setup:")
	fmt.Fprintln(w, "  1. Create an internal integration at https://www.notion.so/my-integrations")
	fmt.Fprintf(w, "  2. Export the token as %s, or put it in .notionscan (see 'notionscan init')\n", config.TokenEnvVar)
	fmt.Fprintln(w, "  3. Give the integration access to the workspace")
	fmt.Fprintln(w, "  4. Share individual pages with the integration where needed")
	fmt.Fprintln(w)
}

// printTroubleshooting prints hints for a failed scan.
func printTroubleshooting(w io.Writer, err error) {
	fmt.Fprintln(w, "The scan did not complete. Check that:")
	switch {
	case errors.Is(err, notion.ErrAuth):
		fmt.Fprintln(w, "  - the integration token is correct and has not been revoked")
		fmt.Fprintln(w, "  - the integration has access to the workspace")
	case errors.Is(err, notion.ErrRateLimited):
		fmt.Fprintln(w, "  - no other job is using the same integration")
		fmt.Fprintln(w, "  - a lower --concurrency or rateLimit is configured")
	default:
		fmt.Fprintln(w, "  - the integration token is correct")
		fmt.Fprintln(w, "  - your internet connection is stable")
		fmt.Fprintln(w, "  - the integration has access to the workspace")
	}
	fmt.Fprintln(w)
}

// progressLine renders "Analyzing pages... (i/N)" on one terminal line.
type progressLine struct {
	mu      sync.Mutex
	w       io.Writer
	printed bool
}

func (p *progressLine) update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\rAnalyzing pages... (%d/%d)", done, total)
	p.printed = true
}

func (p *progressLine) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.printed {
		fmt.Fprintln(p.w)
	}
}
