package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// maxRedirects bounds redirect chains for clients that follow redirects.
const maxRedirects = 10

// Options configures an HTTP client built by NewHTTPClient.
type Options struct {
	// ProxyURL is an optional SOCKS5 proxy, e.g. "socks5://127.0.0.1:1080".
	// Credentials in the URL are used for proxy authentication.
	ProxyURL string

	// Timeout is the overall per-request timeout.
	Timeout time.Duration

	// UserAgent is sent on every request when non-empty.
	UserAgent string

	// Headers are set on every request.
	Headers map[string]string

	// NoRedirects makes the client return 3xx responses as-is instead of
	// following them. API clients set it so a redirect never carries the
	// Authorization header to another host. The public access probe leaves
	// it off and inspects the URL it lands on.
	NoRedirects bool
}

// NewHTTPClient builds an *http.Client for the Notion API or for probing
// published pages. Without a proxy it dials directly.
func NewHTTPClient(opts Options) (*http.Client, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.MaxIdleConns = 10
	base.MaxIdleConnsPerHost = 4
	base.IdleConnTimeout = 30 * time.Second

	if opts.ProxyURL != "" {
		dialer, err := newProxyDialer(opts.ProxyURL)
		if err != nil {
			return nil, err
		}
		base.Proxy = nil
		base.DialContext = dialer.DialContext
	}

	var rt http.RoundTripper = base
	if opts.UserAgent != "" || len(opts.Headers) > 0 {
		rt = &headerInjectingTransport{
			base:      base,
			userAgent: opts.UserAgent,
			headers:   opts.Headers,
		}
	}

	client := &http.Client{
		Transport: rt,
		Timeout:   opts.Timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	if opts.NoRedirects {
		client.CheckRedirect = func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client, nil
}

// newProxyDialer parses a socks5:// or socks5h:// URL and returns a
// context-aware dialer for it.
func newProxyDialer(rawURL string) (proxy.ContextDialer, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProxyURL, err)
	}
	if u.Scheme != "socks5" && u.Scheme != "socks5h" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidProxyURL, u.Scheme)
	}
	if !isValidProxyAddress(u.Host) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProxyURL, u.Host)
	}

	d, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	// The SOCKS5 dialer from x/net implements ContextDialer. Fall back to a
	// goroutine wrapper for anything else.
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd, nil
	}
	return contextDialer{d}, nil
}

// isValidProxyAddress checks for a non-empty host and a port in 1-65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// contextDialer adapts a plain proxy.Dialer. If the context is cancelled the
// dial returns early, but the underlying attempt may continue briefly.
type contextDialer struct {
	d proxy.Dialer
}

func (c contextDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	type dialResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan dialResult, 1)

	go func() {
		conn, err := c.d.Dial(network, address)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case result := <-resultCh:
		return result.conn, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// headerInjectingTransport wraps an http.RoundTripper to set the
// configured User-Agent and headers on every request.
type headerInjectingTransport struct {
	base      http.RoundTripper
	userAgent string
	headers   map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.userAgent != "" && clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}
	return t.base.RoundTrip(clone)
}
