// Package notion implements the subset of the Notion REST API needed to
// enumerate workspace pages: search with cursor pagination, page retrieval
// and bot user lookup.
//
// Requests are paced by a token-bucket limiter and HTTP 429 responses are
// retried with backoff. Failures are reported as *APIError values that match
// ErrAuth, ErrRateLimited, ErrNotFound and ErrAPI through errors.Is.
package notion
