package model

import (
	"errors"
	"fmt"
	"strings"
)

// Format is the report output format.
type Format string

const (
	// FormatJSON writes only the JSON report.
	FormatJSON Format = "json"

	// FormatCSV writes only the CSV report.
	FormatCSV Format = "csv"

	// FormatBoth writes the JSON report and a CSV report next to it.
	FormatBoth Format = "both"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported values.
var ErrUnknownFormat = errors.New("unknown report format")

// Formats returns the accepted format names in display order.
func Formats() []string {
	return []string{string(FormatJSON), string(FormatCSV), string(FormatBoth)}
}

// ParseFormat validates a --format value. Matching is exact; "JSON" is rejected.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatCSV, FormatBoth:
		return f, nil
	default:
		return "", fmt.Errorf("%w: got %q, want one of %s", ErrUnknownFormat, s, strings.Join(Formats(), ", "))
	}
}

// IncludesJSON reports whether a JSON file is produced.
func (f Format) IncludesJSON() bool {
	return f == FormatJSON || f == FormatBoth
}

// IncludesCSV reports whether a CSV file is produced.
func (f Format) IncludesCSV() bool {
	return f == FormatCSV || f == FormatBoth
}
