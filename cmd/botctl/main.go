// Package main is the entry point for the botctl CLI, a command-line front
// end to the Telegram Bot API client in pkg/botapi.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "botctl",
		Short:         "Drive a Telegram bot from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "Path to configuration file")
	pf.String("token", "", "Bot token (overrides configuration and $BOTAPI_TOKEN)")
	pf.String("api-url", "", "Bot API base URL")
	pf.String("journal", "", "Path of the SQLite call journal")
	pf.BoolP("verbose", "v", false, "Log at debug level")

	root.AddCommand(
		versionCmd(),
		configCmd(),
		meCmd(),
		chatCmd(),
		sendCmd(),
		editCmd(),
		callbackCmd(),
		inlineCmd(),
		updatesCmd(),
		webhookCmd(),
		photosCmd(),
		fileCmd(),
		serveCmd(),
		pollCmd(),
		journalCmd(),
		mcpCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "botctl %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
