package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nao1215/notionscan/internal/classify"
	"github.com/nao1215/notionscan/internal/model"
	"github.com/nao1215/notionscan/internal/notion"
	"github.com/nao1215/notionscan/internal/probe"
	"golang.org/x/sync/errgroup"
)

// PageSource is the subset of the Notion API a scan needs.
// *notion.Client implements it.
type PageSource interface {
	Me(ctx context.Context) (*notion.User, error)
	ListAllPages(ctx context.Context) ([]notion.Page, error)
	GetPage(ctx context.Context, id string) (*notion.Page, error)
}

// Prober checks whether a URL is reachable without authentication.
// *probe.Prober implements it.
type Prober interface {
	Probe(ctx context.Context, pageURL string) probe.Result
}

// ProgressFunc is called after each page is processed with the number of
// pages done and the total. It may be called from several goroutines.
type ProgressFunc func(done, total int)

// WorkspaceStep resolves the workspace name of the integration's bot user.
// An unknown workspace name only loses a label, so failures other than
// authentication, rate limiting or cancellation are logged and ignored.
type WorkspaceStep struct {
	source PageSource
	logger *slog.Logger
}

// NewWorkspaceStep creates a WorkspaceStep.
func NewWorkspaceStep(source PageSource, logger *slog.Logger) *WorkspaceStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkspaceStep{source: source, logger: logger}
}

// Name returns the step name.
func (s *WorkspaceStep) Name() string {
	return "workspace"
}

// Do executes the workspace step.
func (s *WorkspaceStep) Do(ctx context.Context, scan *Scan) error {
	user, err := s.source.Me(ctx)
	if err != nil {
		if errors.Is(err, notion.ErrAuth) || errors.Is(err, notion.ErrRateLimited) || ctx.Err() != nil {
			return fmt.Errorf("failed to identify the integration: %w", err)
		}
		s.logger.Warn("could not determine workspace name", "error", err)
		return nil
	}

	scan.Workspace = user.WorkspaceName()
	s.logger.Debug("resolved workspace", "workspace", scan.Workspace)
	return nil
}

// SearchStep lists every page shared with the integration.
type SearchStep struct {
	source PageSource
	logger *slog.Logger
}

// NewSearchStep creates a SearchStep.
func NewSearchStep(source PageSource, logger *slog.Logger) *SearchStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchStep{source: source, logger: logger}
}

// Name returns the step name.
func (s *SearchStep) Name() string {
	return "search"
}

// Do executes the search step.
func (s *SearchStep) Do(ctx context.Context, scan *Scan) error {
	pages, err := s.source.ListAllPages(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pages: %w", err)
	}

	scan.Pages = pages
	s.logger.Info("found pages", "count", len(pages))
	return nil
}

// DetailsStep replaces each search result with the full page object.
// Pages deleted since the search (404) are skipped; any other error aborts.
type DetailsStep struct {
	source      PageSource
	concurrency int
	progress    ProgressFunc
	logger      *slog.Logger
}

// DetailsOption configures a DetailsStep.
type DetailsOption func(*DetailsStep)

// WithDetailsConcurrency sets how many page fetches run at once.
// Values below one are ignored.
func WithDetailsConcurrency(n int) DetailsOption {
	return func(s *DetailsStep) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) DetailsOption {
	return func(s *DetailsStep) {
		s.progress = fn
	}
}

// WithDetailsLogger sets a custom logger for the details step.
func WithDetailsLogger(logger *slog.Logger) DetailsOption {
	return func(s *DetailsStep) {
		s.logger = logger
	}
}

// NewDetailsStep creates a DetailsStep that fetches one page at a time.
func NewDetailsStep(source PageSource, opts ...DetailsOption) *DetailsStep {
	s := &DetailsStep{
		source:      source,
		concurrency: 1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *DetailsStep) Name() string {
	return "details"
}

// Do executes the details step. Results are stored by index, so the
// original page order survives concurrent fetching.
func (s *DetailsStep) Do(ctx context.Context, scan *Scan) error {
	total := len(scan.Pages)
	details := make([]*notion.Page, total)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, page := range scan.Pages {
		g.Go(func() error {
			d, err := s.source.GetPage(gctx, page.ID)
			switch {
			case errors.Is(err, notion.ErrNotFound):
				s.logger.Warn("page no longer exists, skipping", "page_id", page.ID)
			case err != nil:
				return fmt.Errorf("failed to fetch page %s: %w", page.ID, err)
			default:
				details[i] = d
			}

			if s.progress != nil {
				s.progress(int(done.Add(1)), total)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	pages := make([]notion.Page, 0, total)
	for i, d := range details {
		if d == nil {
			scan.Skipped = append(scan.Skipped, scan.Pages[i].ID)
			continue
		}
		pages = append(pages, *d)
	}
	scan.Pages = pages
	return nil
}

// ProbeStep requests every page URL without credentials.
// Probe failures never abort the scan; they simply leave the
// anonymous access indicator unset.
type ProbeStep struct {
	prober      Prober
	concurrency int
	logger      *slog.Logger
}

// NewProbeStep creates a ProbeStep.
func NewProbeStep(prober Prober, concurrency int, logger *slog.Logger) *ProbeStep {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProbeStep{prober: prober, concurrency: concurrency, logger: logger}
}

// Name returns the step name.
func (s *ProbeStep) Name() string {
	return "probe"
}

// Do executes the probe step.
func (s *ProbeStep) Do(ctx context.Context, scan *Scan) error {
	results := make([]*probe.Result, len(scan.Pages))

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i := range scan.Pages {
		target := classify.ProbeTarget(&scan.Pages[i])
		if target == "" {
			continue
		}
		g.Go(func() error {
			res := s.prober.Probe(ctx, target)
			if res.Err != nil {
				s.logger.Debug("probe failed", "url", target, "error", res.Err)
			}
			results[i] = &res
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // probe goroutines never return errors

	if err := ctx.Err(); err != nil {
		return err
	}

	scan.Probes = results
	return nil
}

// ClassifyStep turns every page into a PageRecord.
type ClassifyStep struct {
	classifier *classify.Classifier
}

// NewClassifyStep creates a ClassifyStep.
func NewClassifyStep(classifier *classify.Classifier) *ClassifyStep {
	if classifier == nil {
		classifier = classify.New()
	}
	return &ClassifyStep{classifier: classifier}
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return "classify"
}

// Do executes the classify step.
func (s *ClassifyStep) Do(_ context.Context, scan *Scan) error {
	records := make([]model.PageRecord, len(scan.Pages))
	for i := range scan.Pages {
		var pr *probe.Result
		if i < len(scan.Probes) {
			pr = scan.Probes[i]
		}
		records[i] = s.classifier.Classify(&scan.Pages[i], pr)
	}
	scan.Records = records
	return nil
}

// ReportStep aggregates the classified records.
type ReportStep struct {
	now func() time.Time
}

// NewReportStep creates a ReportStep. now stamps the report; nil means time.Now.
func NewReportStep(now func() time.Time) *ReportStep {
	if now == nil {
		now = time.Now
	}
	return &ReportStep{now: now}
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "report"
}

// Do executes the report step.
func (s *ReportStep) Do(_ context.Context, scan *Scan) error {
	scan.Report = model.BuildReport(scan.Records, scan.Workspace, s.now())
	return nil
}
