package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/nao1215/notionscan/internal/model"
)

// csvHeader is the fixed column layout of the CSV report.
var csvHeader = []string{"Page Title", "URL", "Risk Level", "Public Indicators", "Last Edited Time"}

// CSVWriter outputs the flagged pages as CSV, one row per page.
type CSVWriter struct {
	baseWriter

	// useLabels writes indicator labels instead of indicator IDs.
	useLabels bool
}

// CSVWriterOption configures a CSVWriter.
type CSVWriterOption func(*CSVWriter)

// WithIndicatorIDs writes indicator IDs (e.g. "public_url") instead of labels.
func WithIndicatorIDs() CSVWriterOption {
	return func(w *CSVWriter) {
		w.useLabels = false
	}
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer, opts ...CSVWriterOption) *CSVWriter {
	w := &CSVWriter{
		baseWriter: newBaseWriter(output),
		useLabels:  true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the header and one row per potentially public page.
func (w *CSVWriter) Write(report *model.ScanReport) (int, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write(csvHeader); err != nil {
		return 0, err
	}
	for _, p := range report.PotentialPublicPages {
		if err := cw.Write(w.row(p)); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}

	return w.output.Write(buf.Bytes())
}

func (w *CSVWriter) row(p model.PageRecord) []string {
	var indicators []string
	if w.useLabels {
		indicators = model.IndicatorLabels(p.Indicators)
	} else {
		indicators = make([]string, len(p.Indicators))
		for i, ind := range p.Indicators {
			indicators[i] = string(ind)
		}
	}

	edited := ""
	if !p.LastEditedTime.IsZero() {
		edited = p.LastEditedTime.UTC().Format(time.RFC3339)
	}

	return []string{
		p.Title,
		p.URL,
		p.RiskLevel.String(),
		strings.Join(indicators, ", "),
		edited,
	}
}
