// Package transport builds the HTTP clients used by notionscan.
//
// Both the Notion API client and the public access probe get their
// *http.Client from here, so an optional SOCKS5 egress proxy configured once
// applies to every outbound request. The package should be used through
// dependency injection: build a client once and pass it to the components
// that need it.
package transport
