package pipeline

import (
	"log/slog"
	"time"

	"github.com/nao1215/notionscan/internal/classify"
)

// Settings selects and configures the steps of a workspace scan.
type Settings struct {
	// Source is the Notion API. Required.
	Source PageSource

	// Prober enables the anonymous access probe when non-nil.
	Prober Prober

	// Classifier evaluates indicators. Nil uses every indicator.
	Classifier *classify.Classifier

	// Concurrency bounds page detail fetches and probes.
	Concurrency int

	// Progress is reported while page details are fetched.
	Progress ProgressFunc

	// Now stamps the report. Nil means time.Now.
	Now func() time.Time

	// Logger receives step logs. Nil means slog.Default().
	Logger *slog.Logger
}

// NewScanPipeline assembles the standard scan: workspace, search, details,
// the optional probe, classify and report.
func NewScanPipeline(s Settings) *Pipeline {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := New(WithLogger(logger))
	p.AddSteps(
		NewWorkspaceStep(s.Source, logger),
		NewSearchStep(s.Source, logger),
		NewDetailsStep(s.Source,
			WithDetailsConcurrency(s.Concurrency),
			WithProgress(s.Progress),
			WithDetailsLogger(logger),
		),
	)
	if s.Prober != nil {
		p.AddStep(NewProbeStep(s.Prober, s.Concurrency, logger))
	}
	p.AddSteps(
		NewClassifyStep(s.Classifier),
		NewReportStep(s.Now),
	)
	return p
}
