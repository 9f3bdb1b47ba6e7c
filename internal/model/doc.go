// Package model defines the core data structures used throughout notionscan.
//
// This package contains the following main types:
//   - PageRecord: A classified Notion page with its public indicators
//   - ScanReport: The aggregated result of one workspace scan
//   - RiskLevel: The coarse low/medium/high classification
//   - Indicator: A boolean signal that a page may be publicly accessible
//   - Format: The report output format requested on the command line
//
// The models are serializable to JSON for report output and history storage.
package model
