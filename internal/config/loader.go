package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".notionscan"

// xdgConfigFile is the file name looked up inside the XDG config directory.
const xdgConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .notionscan configuration file.
type File struct {
	// Token is the Notion integration token. NOTION_TOKEN overrides it.
	Token string `yaml:"token,omitempty"`

	// NotionVersion overrides the Notion-Version header.
	NotionVersion string `yaml:"notionVersion,omitempty"`

	// APIBaseURL overrides the API root, e.g. for a recording proxy.
	APIBaseURL string `yaml:"apiBaseURL,omitempty"`

	// Timeout is the per-request API timeout ("30s", "1m").
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// RateLimit is the sustained request rate in requests per second.
	RateLimit float64 `yaml:"rateLimit,omitempty"`

	// MaxRetries is the retry budget for rate limited requests.
	// A pointer so that an explicit 0 disables retries.
	MaxRetries *int `yaml:"maxRetries,omitempty"`

	// Concurrency is the number of page detail workers.
	Concurrency int `yaml:"concurrency,omitempty"`

	// Proxy is an outbound proxy URL for API traffic.
	Proxy string `yaml:"proxy,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Indicators tunes which public indicators are evaluated.
	Indicators IndicatorConfig `yaml:"indicators,omitempty"`

	// Probe configures the unauthenticated access probe.
	Probe ProbeConfig `yaml:"probe,omitempty"`

	// History configures the scan history database.
	History HistoryConfig `yaml:"history,omitempty"`
}

// IndicatorConfig lists indicators to skip.
type IndicatorConfig struct {
	// Disabled contains indicator IDs such as "url_pattern".
	Disabled []string `yaml:"disabled,omitempty"`
}

// ProbeConfig configures the anonymous access probe.
type ProbeConfig struct {
	Enabled bool          `yaml:"enabled,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// HistoryConfig configures scan history persistence.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .notionscan in the current directory
// 3. Look for .notionscan in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), xdgConfigFile))

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}

	return ""
}
