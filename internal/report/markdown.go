package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/notionscan/internal/model"
)

// MarkdownWriter outputs the scan summary as GitHub-flavored Markdown,
// suitable for pasting into an issue or a security review.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writePages(md, report)
	w.writeRecommendations(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("Notion Security Scan Report")
	md.PlainText("")

	rows := [][]string{}
	if report.WorkspaceName != "" {
		rows = append(rows, []string{"Workspace", report.WorkspaceName})
	}
	rows = append(rows,
		[]string{"Scan Date", report.ScanTimestamp.Format("2006-01-02 15:04:05 MST")},
		[]string{"Pages Scanned", strconv.Itoa(report.TotalPagesScanned)},
		[]string{"Suspicious Pages", strconv.Itoa(len(report.PotentialPublicPages))},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSummary writes the risk distribution section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Risk Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Risk Level", "Pages"},
		Rows: [][]string{
			{"🔴 High", strconv.Itoa(report.RiskSummary.High)},
			{"🟡 Medium", strconv.Itoa(report.RiskSummary.Medium)},
			{"🔵 Low", strconv.Itoa(report.RiskSummary.Low)},
			{"**Total**", "**" + strconv.Itoa(report.RiskSummary.Total()) + "**"},
		},
	})
	md.PlainText("")

	if report.TotalPagesScanned > 0 {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for the risk distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.ScanReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Risk Distribution"),
		piechart.WithShowData(true),
	)

	if report.RiskSummary.High > 0 {
		chart.LabelAndIntValue("High", uint64(report.RiskSummary.High))
	}
	if report.RiskSummary.Medium > 0 {
		chart.LabelAndIntValue("Medium", uint64(report.RiskSummary.Medium))
	}
	if report.RiskSummary.Low > 0 {
		chart.LabelAndIntValue("Low", uint64(report.RiskSummary.Low))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert matching the highest risk found.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.ScanReport) {
	switch {
	case report.RiskSummary.High > 0:
		md.Cautionf(
			"%d high-risk page(s) detected. Review their sharing settings immediately.",
			report.RiskSummary.High,
		)
	case report.RiskSummary.Medium > 0:
		md.Warningf(
			"%d page(s) show one public indicator. Check their access permissions.",
			report.RiskSummary.Medium,
		)
	case report.TotalPagesScanned == 0:
		md.Note("No pages are shared with the integration.")
	default:
		md.Tip("No potentially public pages detected.")
	}
	md.PlainText("")
}

// writePages writes a table of every flagged page.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Potentially Public Pages")
	md.PlainText("")

	if len(report.PotentialPublicPages) == 0 {
		md.PlainText("No potentially public pages detected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.PotentialPublicPages))
	for i, p := range report.PotentialPublicPages {
		rows[i] = []string{
			truncateString(p.Title, 50),
			p.RiskLevel.String(),
			strings.Join(model.IndicatorLabels(p.Indicators), ", "),
			p.URL,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Title", "Risk", "Indicators", "URL"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRecommendations writes the ordered recommendation list.
func (w *MarkdownWriter) writeRecommendations(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Security Recommendations")
	md.PlainText("")
	md.OrderedList(report.Recommendations...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [notionscan](https://github.com/nao1215/notionscan). Indicators are heuristic.*")
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
