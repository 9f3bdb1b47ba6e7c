package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/notionscan/internal/model"
)

func flaggedPage(id, title string, inds ...model.Indicator) model.PageRecord {
	return model.PageRecord{
		ID:         id,
		Title:      title,
		URL:        "https://www.notion.so/" + id,
		Indicators: inds,
		RiskLevel:  model.RiskLevelFor(len(inds)),
	}
}

func comparisonFixture() (*model.ScanReport, *model.ScanReport) {
	prevAt := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	curAt := prevAt.Add(24 * time.Hour)

	previous := model.BuildReport([]model.PageRecord{
		flaggedPage("a", "Roadmap", model.IndicatorPublicURL),
		flaggedPage("b", "Wiki", model.IndicatorPublicURL, model.IndicatorPublishedSite),
		flaggedPage("c", "Old launch", model.IndicatorURLPattern),
		{ID: "d", Title: "Private notes"},
	}, "Acme", prevAt)

	current := model.BuildReport([]model.PageRecord{
		flaggedPage("a", "Roadmap", model.IndicatorPublicURL, model.IndicatorPublishedSite),
		flaggedPage("b", "Wiki", model.IndicatorPublicURL, model.IndicatorPublishedSite),
		flaggedPage("e", "Hiring", model.IndicatorPublicURL, model.IndicatorURLPattern),
		{ID: "d", Title: "Private notes"},
	}, "Acme", curAt)

	return previous, current
}

func TestCompare(t *testing.T) {
	t.Parallel()

	t.Run("classifies new, changed, resolved and unchanged pages", func(t *testing.T) {
		t.Parallel()

		previous, current := comparisonFixture()
		c := Compare(previous, current)

		if c.Workspace != "Acme" {
			t.Errorf("Workspace = %q, want Acme", c.Workspace)
		}
		if len(c.NewPages) != 1 || c.NewPages[0].ID != "e" {
			t.Errorf("NewPages = %+v, want [e]", c.NewPages)
		}
		if len(c.ResolvedPages) != 1 || c.ResolvedPages[0].ID != "c" {
			t.Errorf("ResolvedPages = %+v, want [c]", c.ResolvedPages)
		}
		if len(c.ChangedPages) != 1 {
			t.Fatalf("ChangedPages = %+v, want one change", c.ChangedPages)
		}
		ch := c.ChangedPages[0]
		if ch.Page.ID != "a" || ch.PreviousRisk != model.RiskMedium || ch.Page.RiskLevel != model.RiskHigh {
			t.Errorf("unexpected change: %+v", ch)
		}
		if c.UnchangedCount != 1 {
			t.Errorf("UnchangedCount = %d, want 1", c.UnchangedCount)
		}
	})

	t.Run("risk deltas and direction", func(t *testing.T) {
		t.Parallel()

		previous, current := comparisonFixture()
		c := Compare(previous, current)

		if c.RiskChange.HighDelta != 2 {
			t.Errorf("HighDelta = %d, want 2", c.RiskChange.HighDelta)
		}
		if c.RiskChange.MediumDelta != -2 {
			t.Errorf("MediumDelta = %d, want -2", c.RiskChange.MediumDelta)
		}
		if c.RiskChange.Direction != RiskDirectionWorsened {
			t.Errorf("Direction = %q, want worsened", c.RiskChange.Direction)
		}

		reverse := Compare(current, previous)
		if reverse.RiskChange.Direction != RiskDirectionImproved {
			t.Errorf("reverse Direction = %q, want improved", reverse.RiskChange.Direction)
		}
	})

	t.Run("identical outcomes are unchanged", func(t *testing.T) {
		t.Parallel()

		previous, _ := comparisonFixture()
		later := *previous
		later.ScanTimestamp = previous.ScanTimestamp.Add(time.Hour)

		c := Compare(previous, &later)
		if !c.Unchanged() {
			t.Error("expected equal fingerprints")
		}
		if c.RiskChange.Direction != RiskDirectionUnchanged {
			t.Errorf("Direction = %q, want unchanged", c.RiskChange.Direction)
		}
		if len(c.NewPages)+len(c.ResolvedPages)+len(c.ChangedPages) != 0 {
			t.Errorf("expected no differences, got %+v", c)
		}
	})
}

func TestWriteComparison(t *testing.T) {
	t.Parallel()

	previous, current := comparisonFixture()
	c := Compare(previous, current)

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := WriteComparisonText(&buf, c); err != nil {
			t.Fatalf("WriteComparisonText() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"Scan Comparison: Acme",
			"WORSENED",
			"New Suspicious Pages (1)",
			"[+] [high] Hiring",
			"Risk Changed (1)",
			"Roadmap: medium -> high",
			"Resolved Pages (1)",
			"[-] [medium] Old launch",
			"Unchanged: 1 pages",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("text output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := WriteComparisonJSON(&buf, c); err != nil {
			t.Fatalf("WriteComparisonJSON() error = %v", err)
		}

		var decoded struct {
			NewPages      []map[string]any `json:"new_pages"`
			ResolvedPages []map[string]any `json:"resolved_pages"`
			RiskChange    struct {
				Direction string `json:"direction"`
			} `json:"risk_change"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded.NewPages) != 1 || decoded.NewPages[0]["page_id"] != "e" {
			t.Errorf("new_pages = %v", decoded.NewPages)
		}
		if len(decoded.ResolvedPages) != 1 {
			t.Errorf("resolved_pages = %v", decoded.ResolvedPages)
		}
		if decoded.RiskChange.Direction != RiskDirectionWorsened {
			t.Errorf("direction = %q", decoded.RiskChange.Direction)
		}
	})

	t.Run("markdown", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := WriteComparisonMarkdown(&buf, c); err != nil {
			t.Fatalf("WriteComparisonMarkdown() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"# Scan Comparison: Acme",
			"**Risk Status:** WORSENED",
			"| Metric",
			"New Suspicious Pages (1)",
			"Resolved Pages (1)",
			"~~**[medium]** Old launch~~",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("markdown output missing %q:\n%s", want, out)
			}
		}
	})
}

func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want string
	}{
		{3, "+3"},
		{0, "0"},
		{-2, "-2"},
	}
	for _, tt := range tests {
		if got := formatDelta(tt.in); got != tt.want {
			t.Errorf("formatDelta(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
