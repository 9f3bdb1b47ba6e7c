// Package main provides the entry point for the notionscan CLI.
//
// notionscan audits a Notion workspace for pages that may be publicly
// accessible. It lists every page shared with an internal integration,
// flags the ones that show public indicators and writes a JSON and/or CSV
// report.
//
// Usage:
//
//	notionscan -f json -o report.json
//	notionscan scan -f both --probe
//
// See --help for all available options.
package main

// main is the entry point for notionscan.
func main() {
	Execute()
}
