package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/notionscan/internal/model"
	"github.com/nao1215/notionscan/internal/notion"
	"github.com/nao1215/notionscan/internal/probe"
)

// Scan is the state shared by the steps of one workspace scan.
// Each step reads what earlier steps produced and fills in its own part.
type Scan struct {
	// StartedAt is when the scan began.
	StartedAt time.Time

	// Workspace is the bot's workspace name, if known.
	Workspace string

	// Pages holds the pages to classify, in API order.
	Pages []notion.Page

	// Probes holds the anonymous access result for each entry of Pages.
	// It is nil when probing is disabled.
	Probes []*probe.Result

	// Skipped lists IDs of pages that disappeared between search and detail fetch.
	Skipped []string

	// Records holds one classified record per entry of Pages.
	Records []model.PageRecord

	// Report is the aggregated result.
	Report *model.ScanReport

	// PerformedSteps lists the names of the steps that completed.
	PerformedSteps []string
}

// NewScan creates an empty scan state.
func NewScan(startedAt time.Time) *Scan {
	return &Scan{StartedAt: startedAt}
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the scan state
// accumulated by previous steps.
type Step interface {
	// Do executes the pipeline step. Any returned error aborts the scan.
	Do(ctx context.Context, scan *Scan) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence and stops at the first error.
// Cancellation is checked before each step; steps honor ctx themselves
// while they run.
func (p *Pipeline) Execute(ctx context.Context, scan *Scan) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", err,
			)
			return err
		}

		p.logger.Debug("executing step", "step", step.Name())

		if err := step.Do(ctx, scan); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"error", err,
			)
			return err
		}

		p.logger.Debug("step completed", "step", step.Name())
		scan.PerformedSteps = append(scan.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
