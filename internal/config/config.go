package config

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/notionscan/internal/model"
)

// Default configuration values.
const (
	// DefaultAPIBaseURL is the Notion REST API root.
	DefaultAPIBaseURL = "https://api.notion.com/v1"

	// DefaultNotionVersion is the pinned Notion-Version header value.
	// Response shapes (public_url, parent, properties) are parsed against this version.
	DefaultNotionVersion = "2022-06-28"

	// DefaultTimeout is the per-request HTTP timeout for API calls.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the sustained request rate in requests per second.
	// Notion documents an average of three requests per second per integration.
	DefaultRateLimit = 3.0

	// DefaultMaxRetries is how many times a rate-limited request is retried
	// before the scan gives up with a rate limit error.
	DefaultMaxRetries = 5

	// DefaultRetryBaseDelay is the first backoff delay when the API answers 429
	// without a Retry-After header. Each further attempt doubles it.
	DefaultRetryBaseDelay = 1 * time.Second

	// DefaultConcurrency fetches page details one at a time.
	DefaultConcurrency = 1

	// DefaultOutputPath is the report path used when -o is not given.
	DefaultOutputPath = "notion_security_report.json"

	// DefaultProbeTimeout bounds each unauthenticated page fetch.
	DefaultProbeTimeout = 10 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "notionscan"

	// DefaultUserAgent identifies notionscan in HTTP requests.
	DefaultUserAgent = "notionscan/1.0 (+https://github.com/nao1215/notionscan)"

	// TokenEnvVar is the environment variable holding the integration token.
	// It takes precedence over the token stored in the configuration file.
	TokenEnvVar = "NOTION_TOKEN"

	// PlaceholderToken is the value shipped in the configuration template.
	// It is treated the same as an empty token.
	PlaceholderToken = "your_notion_integration_token_here"
)

// Summary styles for the console summary printed after a scan.
const (
	SummaryText     = "text"
	SummaryMarkdown = "markdown"
	SummaryNone     = "none"
)

// Config holds all configuration options for a notionscan run.
// It is populated from defaults, the configuration file, the environment and
// CLI flags, in that order, and passed explicitly to the components that need it.
type Config struct {
	// Token is the Notion internal integration token ("secret_..." or "ntn_...").
	Token string

	// NotionVersion is sent as the Notion-Version header on every request.
	NotionVersion string

	// APIBaseURL is the base URL of the Notion API. Tests point this at an
	// httptest server.
	APIBaseURL string

	// Timeout is the HTTP timeout for a single API request.
	Timeout time.Duration

	// RateLimit is the maximum sustained request rate (requests per second).
	RateLimit float64

	// MaxRetries is the number of retries after an HTTP 429 response.
	// Zero disables retrying.
	MaxRetries int

	// RetryBaseDelay is the initial backoff used when no Retry-After is sent.
	RetryBaseDelay time.Duration

	// Concurrency is the number of page detail requests in flight.
	// All requests still share the same rate limiter.
	Concurrency int

	// ProxyURL is an optional outbound proxy for API traffic, for example
	// "socks5://127.0.0.1:1080".
	ProxyURL string

	// UserAgent is the User-Agent header sent with API and probe requests.
	UserAgent string

	// Format is the requested report format: json, csv or both.
	Format model.Format

	// OutputPath is the report path. With FormatBoth it names the JSON file
	// and the CSV path is derived from it.
	OutputPath string

	// Summary selects the console summary style: text, markdown or none.
	Summary string

	// DisabledIndicators lists indicator IDs that are never evaluated.
	DisabledIndicators []model.Indicator

	// ProbeEnabled turns on the unauthenticated access probe, which adds the
	// anonymous_access indicator.
	ProbeEnabled bool

	// ProbeTimeout bounds each probe request.
	ProbeTimeout time.Duration

	// SaveHistory stores the finished report in the history database.
	SaveHistory bool

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory.
	DBDir string

	// ConfigFilePath is the configuration file given with -c, if any.
	ConfigFilePath string

	// Verbose enables debug logging.
	Verbose bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		NotionVersion:  DefaultNotionVersion,
		APIBaseURL:     DefaultAPIBaseURL,
		Timeout:        DefaultTimeout,
		RateLimit:      DefaultRateLimit,
		MaxRetries:     DefaultMaxRetries,
		RetryBaseDelay: DefaultRetryBaseDelay,
		Concurrency:    DefaultConcurrency,
		UserAgent:      DefaultUserAgent,
		OutputPath:     DefaultOutputPath,
		Summary:        SummaryText,
		ProbeTimeout:   DefaultProbeTimeout,
		DBDir:          XDGDataDir(),
	}
}

// ApplyFile copies every value set in the configuration file onto c.
// Zero values in the file leave the current setting untouched.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	if f.Token != "" {
		c.Token = f.Token
	}
	if f.NotionVersion != "" {
		c.NotionVersion = f.NotionVersion
	}
	if f.APIBaseURL != "" {
		c.APIBaseURL = strings.TrimRight(f.APIBaseURL, "/")
	}
	if f.Timeout > 0 {
		c.Timeout = f.Timeout
	}
	if f.RateLimit > 0 {
		c.RateLimit = f.RateLimit
	}
	if f.MaxRetries != nil {
		c.MaxRetries = *f.MaxRetries
	}
	if f.Concurrency > 0 {
		c.Concurrency = f.Concurrency
	}
	if f.Proxy != "" {
		c.ProxyURL = f.Proxy
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	for _, id := range f.Indicators.Disabled {
		ind := model.Indicator(strings.TrimSpace(id))
		if !slices.Contains(c.DisabledIndicators, ind) {
			c.DisabledIndicators = append(c.DisabledIndicators, ind)
		}
	}
	if f.Probe.Enabled {
		c.ProbeEnabled = true
	}
	if f.Probe.Timeout > 0 {
		c.ProbeTimeout = f.Probe.Timeout
	}
	if f.History.Enabled {
		c.SaveHistory = true
	}
	if f.History.Dir != "" {
		c.DBDir = f.History.Dir
	}
}

// ApplyEnv reads settings from the environment. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if token, ok := lookup(TokenEnvVar); ok && strings.TrimSpace(token) != "" {
		c.Token = strings.TrimSpace(token)
	}
}

// IndicatorEnabled reports whether the given indicator should be evaluated.
func (c *Config) IndicatorEnabled(ind model.Indicator) bool {
	if ind == model.IndicatorAnonymousAccess && !c.ProbeEnabled {
		return false
	}
	return !slices.Contains(c.DisabledIndicators, ind)
}

// XDGDataDir returns the XDG data directory for notionscan.
// On Linux: ~/.local/share/notionscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for notionscan.
// On Linux: ~/.config/notionscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if _, err := model.ParseFormat(string(c.Format)); err != nil {
		return ErrInvalidFormat
	}

	if strings.TrimSpace(c.OutputPath) == "" {
		return ErrEmptyOutputPath
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.RateLimit <= 0 {
		return ErrInvalidRateLimit
	}

	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	switch c.Summary {
	case SummaryText, SummaryMarkdown, SummaryNone:
	default:
		return ErrInvalidSummary
	}

	for _, ind := range c.DisabledIndicators {
		if !ind.Valid() {
			return ErrUnknownIndicator
		}
	}

	if c.ProbeEnabled && c.ProbeTimeout <= 0 {
		return ErrInvalidProbeTimeout
	}

	if !c.HasToken() {
		return ErrMissingToken
	}

	return nil
}

// HasToken reports whether a usable token is configured.
func (c *Config) HasToken() bool {
	token := strings.TrimSpace(c.Token)
	return token != "" && token != PlaceholderToken
}
