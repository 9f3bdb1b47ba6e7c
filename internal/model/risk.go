package model

import (
	"fmt"
	"strings"
)

// RiskLevel is the coarse classification of a page derived from the number
// of public indicators it triggered.
type RiskLevel int

const (
	// RiskLow means no public indicator was found. Such pages are counted in
	// the scan total but are not listed as potentially public.
	RiskLow RiskLevel = iota

	// RiskMedium means exactly one public indicator was found.
	RiskMedium

	// RiskHigh means two or more public indicators were found.
	RiskHigh
)

// highRiskThreshold is the indicator count at which a page becomes high risk.
const highRiskThreshold = 2

// RiskLevelFor maps an indicator count to a risk level.
func RiskLevelFor(indicatorCount int) RiskLevel {
	switch {
	case indicatorCount >= highRiskThreshold:
		return RiskHigh
	case indicatorCount == 1:
		return RiskMedium
	default:
		return RiskLow
	}
}

// String returns the lower-case name used in reports.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseRiskLevel parses "low", "medium" or "high" (case-insensitive).
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLow, nil
	case "medium":
		return RiskMedium, nil
	case "high":
		return RiskHigh, nil
	default:
		return RiskLow, fmt.Errorf("unknown risk level %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so that JSON reports carry
// the level name rather than its ordinal.
func (r RiskLevel) MarshalText() ([]byte, error) {
	if r < RiskLow || r > RiskHigh {
		return nil, fmt.Errorf("invalid risk level %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RiskLevel) UnmarshalText(text []byte) error {
	level, err := ParseRiskLevel(string(text))
	if err != nil {
		return err
	}
	*r = level
	return nil
}

// Recommendation texts emitted in every report.
const (
	recommendHighRisk   = "[Top priority] Review the sharing settings of high-risk pages immediately."
	recommendMediumRisk = "[Medium priority] Check the access permissions of suspected pages."
)

// standingRecommendations are appended to every report after the
// risk-dependent entries, in this order.
var standingRecommendations = []string{
	"Audit page sharing settings regularly.",
	"Handle pages that contain confidential information with particular care.",
	"Educate team members about page publishing settings.",
	"Review the list of public pages periodically and unpublish pages that no longer need to be public.",
	"Apply appropriate access control to important pages.",
}

// Recommendations returns the recommendation list for a risk summary.
func Recommendations(summary RiskSummary) []string {
	recs := make([]string, 0, len(standingRecommendations)+2)
	if summary.High > 0 {
		recs = append(recs, recommendHighRisk)
	}
	if summary.Medium > 0 {
		recs = append(recs, recommendMediumRisk)
	}
	return append(recs, standingRecommendations...)
}
