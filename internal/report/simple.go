package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/notionscan/internal/model"
)

// defaultTopPages is how many flagged pages the console summary lists.
const defaultTopPages = 5

// SimpleWriter outputs the human-readable console summary.
// It uses plain text with ASCII rules so it can be piped to files.
type SimpleWriter struct {
	baseWriter

	// topPages limits how many flagged pages are listed.
	topPages int

	// verbose lists every flagged page and its public URL.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithTopPages sets how many flagged pages are listed. Zero lists none.
func WithTopPages(n int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		if n >= 0 {
			w.topPages = n
		}
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		topPages:   defaultTopPages,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeRiskSummary(&sb, report)
	w.writePages(&sb, report)
	w.writeRecommendations(&sb, report)
	w.writeUrgentWarning(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the summary header with scan information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                 NOTION SECURITY SCAN SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if report.WorkspaceName != "" {
		fmt.Fprintf(sb, "Workspace:         %s\n", report.WorkspaceName)
	}
	fmt.Fprintf(sb, "Scan Date:         %s\n", report.ScanTimestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Pages Scanned:     %d\n", report.TotalPagesScanned)
	fmt.Fprintf(sb, "Suspicious Pages:  %d\n", len(report.PotentialPublicPages))
	sb.WriteString("\n")
}

// writeRiskSummary writes the risk distribution section.
func (w *SimpleWriter) writeRiskSummary(sb *strings.Builder, report *model.ScanReport) {
	writeSection(sb, "RISK DISTRIBUTION")

	fmt.Fprintf(sb, "  HIGH:    %d page(s)\n", report.RiskSummary.High)
	fmt.Fprintf(sb, "  MEDIUM:  %d page(s)\n", report.RiskSummary.Medium)
	fmt.Fprintf(sb, "  LOW:     %d page(s)\n", report.RiskSummary.Low)
	sb.WriteString("\n")
}

// writePages lists the first flagged pages in report order.
func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.ScanReport) {
	pages := report.PotentialPublicPages
	if len(pages) == 0 || w.topPages == 0 {
		return
	}

	limit := w.topPages
	title := fmt.Sprintf("SUSPICIOUS PAGES (top %d)", limit)
	if w.verbose || len(pages) <= limit {
		limit = len(pages)
		title = "SUSPICIOUS PAGES"
	}
	writeSection(sb, title)

	caser := cases.Title(language.English)
	for _, p := range pages[:limit] {
		fmt.Fprintf(sb, "  [%s] %s (risk level: %s)\n", riskMarker(p.RiskLevel), p.Title, caser.String(p.RiskLevel.String()))
		fmt.Fprintf(sb, "    URL: %s\n", p.URL)
		if w.verbose && p.PublicURL != "" {
			fmt.Fprintf(sb, "    Public URL: %s\n", p.PublicURL)
		}
		if len(p.Indicators) > 0 {
			fmt.Fprintf(sb, "    Indicators: %s\n", strings.Join(model.IndicatorLabels(p.Indicators), ", "))
		}
	}
	if remaining := len(pages) - limit; remaining > 0 {
		fmt.Fprintf(sb, "  ... and %d more (see the full report)\n", remaining)
	}
	sb.WriteString("\n")
}

// writeRecommendations writes the numbered recommendation list.
func (w *SimpleWriter) writeRecommendations(sb *strings.Builder, report *model.ScanReport) {
	writeSection(sb, "SECURITY RECOMMENDATIONS")

	for i, rec := range report.Recommendations {
		fmt.Fprintf(sb, "  %d. %s\n", i+1, rec)
	}
	sb.WriteString("\n")
}

// writeUrgentWarning is printed only when high risk pages exist.
func (w *SimpleWriter) writeUrgentWarning(sb *strings.Builder, report *model.ScanReport) {
	if report.RiskSummary.High == 0 {
		return
	}

	sb.WriteString("[!!!] URGENT\n")
	sb.WriteString("  High-risk pages were detected. They may contain confidential information.\n")
	sb.WriteString("  Take these steps now:\n")
	sb.WriteString("    1. Check the sharing settings of each page\n")
	sb.WriteString("    2. Check whether confidential information is exposed\n")
	sb.WriteString("    3. Make the page private where necessary\n")
	sb.WriteString("    4. Notify the people concerned and report the response\n")
	sb.WriteString("\n")
}

// writeFooter writes the summary footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Indicators are heuristic. Confirm sharing settings in Notion itself.\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// riskMarker returns a visual marker for the risk level.
func riskMarker(level model.RiskLevel) string {
	switch level {
	case model.RiskHigh:
		return "!!"
	case model.RiskMedium:
		return "!"
	default:
		return "-"
	}
}
