// Package pipeline runs a workspace scan as a sequence of steps.
//
// A scan resolves the workspace name, lists every page shared with the
// integration, fetches each page's details, optionally probes the page URLs
// without credentials, classifies the pages and builds the report. Each stage
// is a Step that reads and extends the shared Scan state.
//
// Page detail fetches and probes run with bounded concurrency using errgroup.
// Results are stored by index, so the report keeps the order in which the
// API returned the pages.
package pipeline
