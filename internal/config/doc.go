// Package config provides configuration structures and utilities for notionscan.
// It defines the API client settings, report options and the YAML
// configuration file that stores the Notion integration token.
package config
