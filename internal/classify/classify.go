package classify

import (
	"net/url"
	"strings"

	"github.com/nao1215/notionscan/internal/model"
	"github.com/nao1215/notionscan/internal/notion"
	"github.com/nao1215/notionscan/internal/probe"
)

// UntitledPage is the title given to pages without a title property.
const UntitledPage = "Untitled"

// publishedSiteSuffix is the host suffix of pages published with Notion Sites.
const publishedSiteSuffix = ".notion.site"

// privateURLMarkers are substrings whose presence in a page URL suggests it
// is private. Matching is case-sensitive.
var privateURLMarkers = []string{"private", "workspace"}

// Classifier turns raw Notion pages into classified page records.
type Classifier struct {
	enabled map[model.Indicator]bool
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithDisabled turns off the given indicators.
func WithDisabled(indicators ...model.Indicator) Option {
	return func(c *Classifier) {
		for _, ind := range indicators {
			delete(c.enabled, ind)
		}
	}
}

// New creates a Classifier with every indicator enabled.
func New(opts ...Option) *Classifier {
	c := &Classifier{enabled: make(map[model.Indicator]bool)}
	for _, ind := range model.AllIndicators() {
		c.enabled[ind] = true
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether ind is evaluated.
func (c *Classifier) Enabled(ind model.Indicator) bool {
	return c.enabled[ind]
}

// Classify evaluates the enabled indicators for page in fixed order and
// derives the risk level. pr is the public access probe result; nil means
// the page was not probed and anonymous_access cannot fire.
func (c *Classifier) Classify(page *notion.Page, pr *probe.Result) model.PageRecord {
	rec := model.PageRecord{
		ID:             page.ID,
		Title:          Title(page),
		URL:            page.URL,
		CreatedTime:    page.CreatedTime,
		LastEditedTime: page.LastEditedTime,
		CreatedBy:      page.CreatedBy.ID,
		ParentType:     page.Parent.Type,
		Archived:       page.Archived || page.InTrash,
		Indicators:     make([]model.Indicator, 0, 4),
	}
	if page.PublicURL != nil {
		rec.PublicURL = *page.PublicURL
	}

	checks := []struct {
		ind model.Indicator
		hit bool
	}{
		{model.IndicatorPublicURL, rec.PublicURL != ""},
		{model.IndicatorURLPattern, suggestsPublicURL(rec.URL)},
		{model.IndicatorPublishedSite, onPublishedSite(rec.URL) || onPublishedSite(rec.PublicURL)},
		{model.IndicatorAnonymousAccess, pr != nil && pr.Public},
	}
	for _, chk := range checks {
		if chk.hit && c.enabled[chk.ind] {
			rec.Indicators = append(rec.Indicators, chk.ind)
		}
	}

	rec.RiskLevel = model.RiskLevelFor(len(rec.Indicators))
	return rec
}

// Title returns the concatenated plain text of the page's title property,
// or UntitledPage when there is none or it is empty.
func Title(page *notion.Page) string {
	for _, prop := range page.Properties {
		if prop.Type != "title" || len(prop.Title) == 0 {
			continue
		}
		var b strings.Builder
		for _, rt := range prop.Title {
			b.WriteString(rt.PlainText)
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return UntitledPage
}

// ProbeTarget returns the URL the public access probe should request:
// the public URL when present, otherwise the page URL.
func ProbeTarget(page *notion.Page) string {
	if page.PublicURL != nil && *page.PublicURL != "" {
		return *page.PublicURL
	}
	return page.URL
}

// suggestsPublicURL reports whether a non-empty URL lacks every private marker.
func suggestsPublicURL(u string) bool {
	if u == "" {
		return false
	}
	for _, m := range privateURLMarkers {
		if strings.Contains(u, m) {
			return false
		}
	}
	return true
}

// onPublishedSite reports whether u is hosted under *.notion.site.
func onPublishedSite(u string) bool {
	if u == "" {
		return false
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(parsed.Hostname()), publishedSiteSuffix)
}
