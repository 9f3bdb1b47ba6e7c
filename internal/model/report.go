package model

import (
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

// RiskSummary counts scanned pages per risk level.
// High + Medium + Low always equals the number of scanned pages.
type RiskSummary struct {
	High   int `json:"high_risk"`
	Medium int `json:"medium_risk"`
	Low    int `json:"low_risk"`
}

// Total returns the number of pages counted.
func (s RiskSummary) Total() int {
	return s.High + s.Medium + s.Low
}

// Flagged returns the number of medium and high risk pages.
func (s RiskSummary) Flagged() int {
	return s.High + s.Medium
}

// ScanReport is the aggregated result of one workspace scan.
type ScanReport struct {
	// ScanTimestamp is when the scan finished.
	ScanTimestamp time.Time `json:"scan_timestamp"`

	// WorkspaceName is the bot's workspace name, if the API reported it.
	WorkspaceName string `json:"workspace_name,omitempty"`

	// TotalPagesScanned counts every page that was classified.
	TotalPagesScanned int `json:"total_pages_scanned"`

	// PotentialPublicPages holds the medium and high risk pages in API order.
	PotentialPublicPages []PageRecord `json:"potential_public_pages"`

	// Recommendations are the remediation hints for this result.
	Recommendations []string `json:"security_recommendations"`

	// RiskSummary partitions TotalPagesScanned by risk level.
	RiskSummary RiskSummary `json:"risk_summary"`
}

// BuildReport aggregates classified pages into a ScanReport.
// Low risk pages are counted but not listed. Flagged pages keep the order in
// which records were given.
func BuildReport(records []PageRecord, workspace string, scannedAt time.Time) *ScanReport {
	r := &ScanReport{
		ScanTimestamp:        scannedAt,
		WorkspaceName:        workspace,
		TotalPagesScanned:    len(records),
		PotentialPublicPages: make([]PageRecord, 0),
	}

	for _, rec := range records {
		switch rec.RiskLevel {
		case RiskHigh:
			r.RiskSummary.High++
		case RiskMedium:
			r.RiskSummary.Medium++
		default:
			r.RiskSummary.Low++
		}
		if rec.Flagged() {
			r.PotentialPublicPages = append(r.PotentialPublicPages, rec)
		}
	}

	r.Recommendations = Recommendations(r.RiskSummary)
	return r
}

// PagesByRisk returns the flagged pages with the given risk level.
func (r *ScanReport) PagesByRisk(level RiskLevel) []PageRecord {
	var out []PageRecord
	for _, p := range r.PotentialPublicPages {
		if p.RiskLevel == level {
			out = append(out, p)
		}
	}
	return out
}

// Fingerprint returns a stable hex digest of the scan outcome. Two reports
// with the same flagged pages, levels, indicators and total share a
// fingerprint regardless of when they were taken.
func (r *ScanReport) Fingerprint() string {
	lines := make([]string, 0, len(r.PotentialPublicPages)+1)
	for _, p := range r.PotentialPublicPages {
		inds := make([]string, len(p.Indicators))
		for i, ind := range p.Indicators {
			inds[i] = string(ind)
		}
		lines = append(lines, p.ID+"|"+p.RiskLevel.String()+"|"+strings.Join(inds, ","))
	}
	sort.Strings(lines)

	h := sha3.New256()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{'\n'})
	}
	h.Write([]byte("total=" + strconv.Itoa(r.TotalPagesScanned)))
	return hex.EncodeToString(h.Sum(nil))
}
