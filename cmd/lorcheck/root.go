package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for lorcheck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lorcheck",
		Short: "Browser checks for the linux.org.ru front page",
		Long: `lorcheck verifies that the front page of https://www.linux.org.ru/ still matches
a pinned set of selectors and texts. It drives headless Chrome through the
DevTools protocol and checks the header (#hd), body (#bd) and footer (#ft).

Use --static to check the served HTML without a browser. Interactive checks
such as scroll-to-top are skipped in that mode.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
