// Package database provides SQLite-based scan history for notionscan.
//
// HistoryDB stores every saved ScanReport as JSON together with its risk
// counts and outcome fingerprint, keyed by workspace name. The compare
// command reads it back to show which pages became public or were fixed
// between two scans.
//
// The database lives in a single file ($XDG_DATA_HOME/notionscan/notionscan.db
// by default) and is written through modernc.org/sqlite, a CGO-free driver.
// Nothing is stored unless history is enabled.
package database
