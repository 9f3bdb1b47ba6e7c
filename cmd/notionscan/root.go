package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// errNoArguments is returned when notionscan is invoked without arguments.
var errNoArguments = errors.New("no arguments given")

// NewRootCmd creates the root command for notionscan.
// The root command accepts the scan flags so that `notionscan -f json` works
// without naming the scan subcommand.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notionscan",
		Short: "Find Notion pages that may be publicly accessible",
		Long: `notionscan audits a Notion workspace for pages that may be publicly accessible.

It lists every page shared with your internal integration, checks each page
for public indicators (a public URL, a published notion.site address, a URL
without private markers and, optionally, unauthenticated access) and writes a
risk report in JSON and/or CSV.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().NFlag() == 0 {
				_ = cmd.Help() //nolint:errcheck // best effort help output
				return errNoArguments
			}
			return runScanCmd(cmd, args)
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs to stderr as JSON lines")
	addScanFlags(cmd)

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. SIGINT and SIGTERM cancel the running scan.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		if !errors.Is(err, errNoArguments) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
