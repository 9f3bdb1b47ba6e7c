package report

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/notionscan/internal/model"
)

const (
	// fileMode is the permission of written report files.
	// Reports list page titles and URLs, so they are private to the user.
	fileMode os.FileMode = 0o600

	// dirMode is the permission of created parent directories.
	dirMode os.FileMode = 0o750
)

// ErrPathCollision is returned when JSON and CSV would share one file.
var ErrPathCollision = errors.New("JSON and CSV reports would be written to the same file")

// OutputFile is a report file to be written.
type OutputFile struct {
	// Path is the destination path.
	Path string

	// Format is "json" or "csv".
	Format model.Format
}

// CSVPathFor returns the CSV path used next to a JSON report in "both" mode:
// the last extension of the file name is replaced with ".csv", or ".csv" is
// appended when there is none.
func CSVPathFor(jsonPath string) string {
	ext := filepath.Ext(jsonPath)
	return strings.TrimSuffix(jsonPath, ext) + ".csv"
}

// Plan returns the files a format writes for the given output path.
func Plan(format model.Format, path string) ([]OutputFile, error) {
	switch format {
	case model.FormatJSON:
		return []OutputFile{{Path: path, Format: model.FormatJSON}}, nil
	case model.FormatCSV:
		return []OutputFile{{Path: path, Format: model.FormatCSV}}, nil
	case model.FormatBoth:
		csvPath := CSVPathFor(path)
		if filepath.Clean(csvPath) == filepath.Clean(path) {
			return nil, fmt.Errorf("%w: %s", ErrPathCollision, path)
		}
		return []OutputFile{
			{Path: path, Format: model.FormatJSON},
			{Path: csvPath, Format: model.FormatCSV},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownFormat, format)
	}
}

// Render serializes the report in a single file format.
func Render(report *model.ScanReport, format model.Format) ([]byte, error) {
	var buf bytes.Buffer
	var w Writer
	switch format {
	case model.FormatJSON:
		w = NewJSONWriter(&buf, WithPrettyPrint())
	case model.FormatCSV:
		w = NewCSVWriter(&buf)
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownFormat, format)
	}
	if _, err := w.Write(report); err != nil {
		return nil, fmt.Errorf("failed to render %s report: %w", format, err)
	}
	return buf.Bytes(), nil
}

// WriteFiles writes the report in the requested format to path and returns
// the written paths. Every file is rendered and staged in a temporary file
// before any destination is replaced, so a failure leaves no report behind.
func WriteFiles(report *model.ScanReport, format model.Format, path string) ([]string, error) {
	if path == "" {
		return nil, errors.New("output path is empty")
	}

	files, err := Plan(format, path)
	if err != nil {
		return nil, err
	}

	rendered := make([][]byte, len(files))
	for i, f := range files {
		data, err := Render(report, f.Format)
		if err != nil {
			return nil, err
		}
		rendered[i] = data
	}

	staged := make([]string, 0, len(files))
	cleanup := func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp) //nolint:errcheck // best effort cleanup
		}
	}

	for i, f := range files {
		tmp, err := stage(f.Path, rendered[i])
		if err != nil {
			cleanup()
			return nil, err
		}
		staged = append(staged, tmp)
	}

	written := make([]string, 0, len(files))
	for i, f := range files {
		if err := os.Rename(staged[i], f.Path); err != nil {
			cleanup()
			return written, fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
		written = append(written, f.Path)
	}
	return written, nil
}

// stage writes data to a temporary file in the destination directory.
func stage(dest string, data []byte) (string, error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()     //nolint:errcheck // already failing
		_ = os.Remove(name) //nolint:errcheck // best effort cleanup
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()     //nolint:errcheck // already failing
		_ = os.Remove(name) //nolint:errcheck // best effort cleanup
		return "", fmt.Errorf("failed to set permissions on %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name) //nolint:errcheck // best effort cleanup
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return name, nil
}
