package model

// Indicator identifies a boolean signal suggesting that a Notion page is
// externally accessible. The heuristics are approximate: the Notion API does
// not expose sharing settings directly, so every indicator is indirect.
type Indicator string

const (
	// IndicatorPublicURL is set when the page object carries a public_url,
	// which Notion fills in for pages published to the web.
	IndicatorPublicURL Indicator = "public_url"

	// IndicatorURLPattern is set when the page URL contains neither "private"
	// nor "workspace".
	IndicatorURLPattern Indicator = "url_pattern"

	// IndicatorPublishedSite is set when the page or its public URL is hosted
	// on a *.notion.site domain.
	IndicatorPublishedSite Indicator = "published_site"

	// IndicatorAnonymousAccess is set when an unauthenticated request to the
	// page succeeds without being redirected to a sign-in page.
	// Only evaluated when probing is enabled.
	IndicatorAnonymousAccess Indicator = "anonymous_access"
)

// allIndicators lists every indicator in evaluation order.
var allIndicators = []Indicator{
	IndicatorPublicURL,
	IndicatorURLPattern,
	IndicatorPublishedSite,
	IndicatorAnonymousAccess,
}

// indicatorLabels maps indicators to the labels used in CSV and console output.
var indicatorLabels = map[Indicator]string{
	IndicatorPublicURL:       "Public URL present",
	IndicatorURLPattern:      "URL pattern suggests public access",
	IndicatorPublishedSite:   "Hosted on a published Notion site",
	IndicatorAnonymousAccess: "Reachable without authentication",
}

// AllIndicators returns every known indicator in evaluation order.
func AllIndicators() []Indicator {
	out := make([]Indicator, len(allIndicators))
	copy(out, allIndicators)
	return out
}

// Valid reports whether i is a known indicator.
func (i Indicator) Valid() bool {
	_, ok := indicatorLabels[i]
	return ok
}

// Label returns the human-readable description of the indicator.
// Unknown indicators are returned unchanged.
func (i Indicator) Label() string {
	if label, ok := indicatorLabels[i]; ok {
		return label
	}
	return string(i)
}

// IndicatorLabels converts a list of indicators to their labels.
func IndicatorLabels(indicators []Indicator) []string {
	labels := make([]string, len(indicators))
	for i, ind := range indicators {
		labels[i] = ind.Label()
	}
	return labels
}
