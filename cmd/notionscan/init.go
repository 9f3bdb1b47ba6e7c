package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nao1215/notionscan/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/notionscan.yaml
var configTemplate []byte

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a notionscan configuration file",
		Long: `Init writes a commented .notionscan configuration file to the current directory.

The file holds a placeholder integration token and every optional setting
with its default value commented out. Replace the token (or set NOTION_TOKEN)
before running a scan.

Examples:
  # Create .notionscan in the current directory
  notionscan init

  # Create the file somewhere else
  notionscan init -o ~/.config/notionscan/config.yaml

  # Overwrite an existing file
  notionscan init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		_, err := os.Stat(outputPath)
		if err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to check %s: %w", outputPath, err)
		}
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// The file will hold a token, so keep it private.
	if err := os.WriteFile(outputPath, configTemplate, 0o600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Create an internal integration at https://www.notion.so/my-integrations")
	fmt.Fprintln(out, "  2. Put its token in the file, or export NOTION_TOKEN")
	fmt.Fprintln(out, "  3. Share the pages to audit with the integration")
	fmt.Fprintln(out, "  4. Run: notionscan -f json")
	return nil
}
