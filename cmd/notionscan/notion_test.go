package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// fakePage is the subset of a Notion page object the fake API serves.
type fakePage struct {
	id        string
	title     string
	url       string
	publicURL string
}

func (p fakePage) object() map[string]any {
	obj := map[string]any{
		"object":           "page",
		"id":               p.id,
		"created_time":     "2026-01-02T03:04:05.000Z",
		"last_edited_time": "2026-02-03T04:05:06.000Z",
		"created_by":       map[string]any{"object": "user", "id": "user-1"},
		"last_edited_by":   map[string]any{"object": "user", "id": "user-1"},
		"parent":           map[string]any{"type": "workspace", "workspace": true},
		"archived":         false,
		"in_trash":         false,
		"url":              p.url,
		"public_url":       nil,
		"properties": map[string]any{
			"title": map[string]any{
				"id":    "title",
				"type":  "title",
				"title": []any{map[string]any{"type": "text", "plain_text": p.title}},
			},
		},
	}
	if p.publicURL != "" {
		obj["public_url"] = p.publicURL
	}
	return obj
}

// fakeNotion serves /v1/users/me, /v1/search and /v1/pages/{id}.
type fakeNotion struct {
	mu        sync.Mutex
	workspace string
	pages     []fakePage
	status    int // non-zero forces every request to fail with this status
	requests  int
}

func (f *fakeNotion) setPages(pages ...fakePage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = pages
}

func (f *fakeNotion) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *fakeNotion) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "error", "status": f.status, "code": "unauthorized", "message": "API token is invalid.",
		})
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/v1/users/me":
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "user", "id": "bot-1", "type": "bot", "name": "scanner",
			"bot": map[string]any{
				"owner":          map[string]any{"type": "workspace", "workspace": true},
				"workspace_name": f.workspace,
			},
		})
	case r.Method == http.MethodPost && r.URL.Path == "/v1/search":
		results := make([]any, 0, len(f.pages))
		for _, p := range f.pages {
			results = append(results, p.object())
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list", "results": results, "next_cursor": nil, "has_more": false,
		})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/pages/"):
		id := strings.TrimPrefix(r.URL.Path, "/v1/pages/")
		for _, p := range f.pages {
			if p.id == id {
				_ = json.NewEncoder(w).Encode(p.object())
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "error", "status": 404, "code": "object_not_found", "message": "Could not find page.",
		})
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

// Pages of the default fixture: one high, one low and one medium risk page.
var (
	roadmapPage = fakePage{
		id:        "page-roadmap",
		title:     "Roadmap",
		url:       "https://www.notion.so/Roadmap-1",
		publicURL: "https://acme.notion.site/Roadmap-1",
	}
	wikiPage = fakePage{
		id:    "page-wiki",
		title: "Team Wiki",
		url:   "https://www.notion.so/workspace/Team-Wiki-2",
	}
	launchPage = fakePage{
		id:    "page-launch",
		title: "Launch Plan",
		url:   "https://www.notion.so/Launch-Plan-3",
	}
)

// newFakeNotion starts a fake API holding the default fixture.
func newFakeNotion(t *testing.T) (*fakeNotion, *httptest.Server) {
	t.Helper()

	f := &fakeNotion{
		workspace: "Acme Corp",
		pages:     []fakePage{roadmapPage, wikiPage, launchPage},
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

// writeTestConfig writes a configuration file pointing at the fake API and
// returns its path. extra is appended verbatim.
func writeTestConfig(t *testing.T, apiURL, extra string) string {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("token: secret_testtoken1234567890\n")
	if apiURL != "" {
		sb.WriteString("apiBaseURL: " + apiURL + "/v1\n")
	}
	sb.WriteString("rateLimit: 1000\n")
	sb.WriteString("maxRetries: 0\n")
	sb.WriteString(extra)

	path := filepath.Join(t.TempDir(), "notionscan.yaml")
	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}
