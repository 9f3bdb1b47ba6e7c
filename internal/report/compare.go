package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/notionscan/internal/model"
)

// Risk directions between two scans.
const (
	RiskDirectionWorsened  = "worsened"
	RiskDirectionImproved  = "improved"
	RiskDirectionUnchanged = "unchanged"
)

// Comparison is the difference between two scans of the same workspace.
type Comparison struct {
	// Workspace is the workspace name of the current scan.
	Workspace string `json:"workspace,omitempty"`

	// PreviousScan summarizes the older scan.
	PreviousScan ScanMetadata `json:"previous_scan"`

	// CurrentScan summarizes the newer scan.
	CurrentScan ScanMetadata `json:"current_scan"`

	// NewPages are flagged now but were not flagged before.
	NewPages []model.PageRecord `json:"new_pages,omitempty"`

	// ResolvedPages were flagged before and are no longer flagged.
	ResolvedPages []model.PageRecord `json:"resolved_pages,omitempty"`

	// ChangedPages are flagged in both scans with a different risk level.
	ChangedPages []PageChange `json:"changed_pages,omitempty"`

	// UnchangedCount is the number of pages flagged in both scans at the same level.
	UnchangedCount int `json:"unchanged_count"`

	// RiskChange describes the overall change in risk.
	RiskChange RiskChange `json:"risk_change"`
}

// ScanMetadata contains the per-scan figures shown in a comparison.
type ScanMetadata struct {
	ScanTimestamp time.Time `json:"scan_timestamp"`
	TotalPages    int       `json:"total_pages_scanned"`
	High          int       `json:"high_risk"`
	Medium        int       `json:"medium_risk"`
	Low           int       `json:"low_risk"`
	Fingerprint   string    `json:"fingerprint"`
}

// PageChange is a flagged page whose risk level moved between scans.
type PageChange struct {
	Page         model.PageRecord `json:"page"`
	PreviousRisk model.RiskLevel  `json:"previous_risk"`
}

// RiskChange describes the change in risk counts between scans.
type RiskChange struct {
	// Direction is "improved", "worsened" or "unchanged".
	Direction   string `json:"direction"`
	HighDelta   int    `json:"high_delta"`
	MediumDelta int    `json:"medium_delta"`
	LowDelta    int    `json:"low_delta"`
}

// Compare computes the difference between a previous and a current report.
// Pages are matched by page ID. New and changed pages follow the current
// report's order and resolved pages follow the previous report's order.
func Compare(previous, current *model.ScanReport) *Comparison {
	result := &Comparison{
		Workspace:    current.WorkspaceName,
		PreviousScan: metadataOf(previous),
		CurrentScan:  metadataOf(current),
	}

	before := make(map[string]model.PageRecord, len(previous.PotentialPublicPages))
	for _, p := range previous.PotentialPublicPages {
		before[p.ID] = p
	}
	after := make(map[string]struct{}, len(current.PotentialPublicPages))

	for _, p := range current.PotentialPublicPages {
		after[p.ID] = struct{}{}
		old, ok := before[p.ID]
		switch {
		case !ok:
			result.NewPages = append(result.NewPages, p)
		case old.RiskLevel != p.RiskLevel:
			result.ChangedPages = append(result.ChangedPages, PageChange{Page: p, PreviousRisk: old.RiskLevel})
		default:
			result.UnchangedCount++
		}
	}

	for _, p := range previous.PotentialPublicPages {
		if _, ok := after[p.ID]; !ok {
			result.ResolvedPages = append(result.ResolvedPages, p)
		}
	}

	result.RiskChange = calculateRiskChange(result.PreviousScan, result.CurrentScan)
	return result
}

// Unchanged reports whether both scans produced the same outcome.
func (c *Comparison) Unchanged() bool {
	return c.PreviousScan.Fingerprint == c.CurrentScan.Fingerprint
}

func metadataOf(r *model.ScanReport) ScanMetadata {
	return ScanMetadata{
		ScanTimestamp: r.ScanTimestamp,
		TotalPages:    r.TotalPagesScanned,
		High:          r.RiskSummary.High,
		Medium:        r.RiskSummary.Medium,
		Low:           r.RiskSummary.Low,
		Fingerprint:   r.Fingerprint(),
	}
}

// calculateRiskChange weighs a high risk page as ten medium ones.
func calculateRiskChange(previous, current ScanMetadata) RiskChange {
	change := RiskChange{
		HighDelta:   current.High - previous.High,
		MediumDelta: current.Medium - previous.Medium,
		LowDelta:    current.Low - previous.Low,
	}

	previousScore := previous.High*10 + previous.Medium
	currentScore := current.High*10 + current.Medium

	switch {
	case currentScore < previousScore:
		change.Direction = RiskDirectionImproved
	case currentScore > previousScore:
		change.Direction = RiskDirectionWorsened
	default:
		change.Direction = RiskDirectionUnchanged
	}
	return change
}

// WriteComparisonJSON writes the comparison as indented JSON.
func WriteComparisonJSON(w io.Writer, c *Comparison) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(c)
}

// WriteComparisonText writes the comparison for terminal display.
func WriteComparisonText(w io.Writer, c *Comparison) error {
	var sb strings.Builder

	title := "Scan Comparison"
	if c.Workspace != "" {
		title += ": " + c.Workspace
	}
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")

	fmt.Fprintf(&sb, "\nRisk Status: %s\n", formatRiskDirection(c.RiskChange.Direction))
	fmt.Fprintf(&sb, "\nPrevious scan: %s\n", c.PreviousScan.ScanTimestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Current scan:  %s\n", c.CurrentScan.ScanTimestamp.Format("2006-01-02 15:04:05"))

	sb.WriteString("\nRisk Summary:\n")
	fmt.Fprintf(&sb, "  %-14s  %-10s  %-10s  %-10s\n", "Risk", "Previous", "Current", "Change")
	sb.WriteString("  " + strings.Repeat("-", 49) + "\n")
	fmt.Fprintf(&sb, "  %-14s  %-10d  %-10d  %-10s\n", "High",
		c.PreviousScan.High, c.CurrentScan.High, formatDelta(c.RiskChange.HighDelta))
	fmt.Fprintf(&sb, "  %-14s  %-10d  %-10d  %-10s\n", "Medium",
		c.PreviousScan.Medium, c.CurrentScan.Medium, formatDelta(c.RiskChange.MediumDelta))
	fmt.Fprintf(&sb, "  %-14s  %-10d  %-10d  %-10s\n", "Low",
		c.PreviousScan.Low, c.CurrentScan.Low, formatDelta(c.RiskChange.LowDelta))
	sb.WriteString("  " + strings.Repeat("-", 49) + "\n")
	fmt.Fprintf(&sb, "  %-14s  %-10d  %-10d  %-10s\n", "Pages scanned",
		c.PreviousScan.TotalPages, c.CurrentScan.TotalPages,
		formatDelta(c.CurrentScan.TotalPages-c.PreviousScan.TotalPages))

	if len(c.NewPages) > 0 {
		fmt.Fprintf(&sb, "\nNew Suspicious Pages (%d):\n", len(c.NewPages))
		for _, p := range c.NewPages {
			fmt.Fprintf(&sb, "  [+] [%s] %s\n", p.RiskLevel, p.Title)
			fmt.Fprintf(&sb, "      URL: %s\n", p.URL)
		}
	}

	if len(c.ChangedPages) > 0 {
		fmt.Fprintf(&sb, "\nRisk Changed (%d):\n", len(c.ChangedPages))
		for _, ch := range c.ChangedPages {
			fmt.Fprintf(&sb, "  [~] %s: %s -> %s\n", ch.Page.Title, ch.PreviousRisk, ch.Page.RiskLevel)
		}
	}

	if len(c.ResolvedPages) > 0 {
		fmt.Fprintf(&sb, "\nResolved Pages (%d):\n", len(c.ResolvedPages))
		for _, p := range c.ResolvedPages {
			fmt.Fprintf(&sb, "  [-] [%s] %s\n", p.RiskLevel, p.Title)
		}
	}

	if c.UnchangedCount > 0 {
		fmt.Fprintf(&sb, "\nUnchanged: %d pages\n", c.UnchangedCount)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteComparisonMarkdown writes the comparison as GitHub-flavored Markdown.
func WriteComparisonMarkdown(w io.Writer, c *Comparison) error {
	md := markdown.NewMarkdown(w)

	title := "Scan Comparison"
	if c.Workspace != "" {
		title += ": " + c.Workspace
	}
	md.H1(title)
	md.PlainText("")
	md.H2("Summary")
	md.PlainText("")
	md.PlainTextf("**Risk Status:** %s", formatRiskDirection(c.RiskChange.Direction))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: [][]string{
			{
				"Date",
				c.PreviousScan.ScanTimestamp.Format("2006-01-02 15:04"),
				c.CurrentScan.ScanTimestamp.Format("2006-01-02 15:04"),
				"-",
			},
			countRow("High", c.PreviousScan.High, c.CurrentScan.High),
			countRow("Medium", c.PreviousScan.Medium, c.CurrentScan.Medium),
			countRow("Low", c.PreviousScan.Low, c.CurrentScan.Low),
			countRow("**Pages scanned**", c.PreviousScan.TotalPages, c.CurrentScan.TotalPages),
		},
	})

	if len(c.NewPages) > 0 {
		md.PlainText("")
		md.H2f("New Suspicious Pages (%d)", len(c.NewPages))
		md.PlainText("")
		items := make([]string, len(c.NewPages))
		for i, p := range c.NewPages {
			items[i] = fmt.Sprintf("**[%s]** %s (%s)", p.RiskLevel, p.Title, p.URL)
		}
		md.BulletList(items...)
	}

	if len(c.ChangedPages) > 0 {
		md.PlainText("")
		md.H2f("Risk Changed (%d)", len(c.ChangedPages))
		md.PlainText("")
		items := make([]string, len(c.ChangedPages))
		for i, ch := range c.ChangedPages {
			items[i] = fmt.Sprintf("%s: %s → %s", ch.Page.Title, ch.PreviousRisk, ch.Page.RiskLevel)
		}
		md.BulletList(items...)
	}

	if len(c.ResolvedPages) > 0 {
		md.PlainText("")
		md.H2f("Resolved Pages (%d)", len(c.ResolvedPages))
		md.PlainText("")
		items := make([]string, len(c.ResolvedPages))
		for i, p := range c.ResolvedPages {
			items[i] = fmt.Sprintf("~~**[%s]** %s~~", p.RiskLevel, p.Title)
		}
		md.BulletList(items...)
	}

	if c.UnchangedCount > 0 {
		md.PlainText("")
		md.HorizontalRule()
		md.PlainText("")
		md.PlainTextf("*%d pages unchanged*", c.UnchangedCount)
	}

	return md.Build()
}

func countRow(label string, previous, current int) []string {
	return []string{label, strconv.Itoa(previous), strconv.Itoa(current), formatDelta(current - previous)}
}

// formatRiskDirection formats the risk change direction for display.
func formatRiskDirection(direction string) string {
	switch direction {
	case RiskDirectionImproved:
		return "IMPROVED (risk decreased)"
	case RiskDirectionWorsened:
		return "WORSENED (risk increased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
