package probe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxBodySize bounds how much of a page is read for inspection.
const maxBodySize = 2 << 20

// signInMarkers are lower-case phrases that identify a sign-in wall.
var signInMarkers = []string{"sign in", "login", "log in"}

// Result is the outcome of probing one page URL.
type Result struct {
	// URL is the probed URL.
	URL string

	// StatusCode is the final HTTP status, or 0 if the request failed.
	StatusCode int

	// Public is true when the page was served without authentication.
	Public bool

	// Reason explains why the page was or was not considered public.
	Reason string

	// Err is the transport error, if any. A failed probe is never public.
	Err error
}

// Prober fetches page URLs without credentials.
type Prober struct {
	client *http.Client
	logger *slog.Logger
}

// New creates a Prober. The client must not carry Notion credentials.
func New(client *http.Client, logger *slog.Logger) *Prober {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{client: client, logger: logger}
}

// Probe issues an unauthenticated GET to pageURL. The page counts as public
// when the final response is 200 and neither the landing URL nor the
// document shows a sign-in wall.
func (p *Prober) Probe(ctx context.Context, pageURL string) Result {
	res := Result{URL: pageURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		res.Err = fmt.Errorf("failed to create probe request: %w", err)
		res.Reason = "invalid URL"
		return res
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("public access probe failed", "url", pageURL, "error", err)
		res.Err = err
		res.Reason = "request failed"
		return res
	}
	defer func() { _ = resp.Body.Close() }()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		res.Reason = fmt.Sprintf("status %d", resp.StatusCode)
		return res
	}

	if resp.Request != nil && resp.Request.URL != nil && containsMarker(strings.ToLower(resp.Request.URL.Path)) {
		res.Reason = "redirected to sign-in page"
		return res
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		res.Err = fmt.Errorf("failed to parse probe response: %w", err)
		res.Reason = "unparseable response"
		return res
	}

	if reason, walled := signInWall(doc); walled {
		res.Reason = reason
		return res
	}

	res.Public = true
	res.Reason = "served without authentication"
	return res
}

// signInWall reports whether the document looks like a sign-in page.
func signInWall(doc *goquery.Document) (string, bool) {
	if doc.Find(`input[type="password"]`).Length() > 0 {
		return "password field present", true
	}

	login := false
	doc.Find("form[action]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		action, _ := s.Attr("action")
		login = containsMarker(strings.ToLower(action))
		return !login
	})
	if login {
		return "login form present", true
	}

	text := strings.ToLower(doc.Find("title").Text() + " " + doc.Find("body").Text())
	if containsMarker(text) {
		return "sign-in prompt present", true
	}
	return "", false
}

func containsMarker(s string) bool {
	for _, m := range signInMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
