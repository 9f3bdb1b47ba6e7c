// Package probe checks whether a Notion page URL can be opened without
// signing in. It is an optional, slower indicator: the request goes to the
// page itself rather than to the API, and the HTML is inspected with goquery
// for sign-in walls. The result is heuristic and not a guarantee.
package probe
