package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagVerbose bool
	flagDebug   bool

	rootCmd = &cobra.Command{
		Use:   "calpatch",
		Short: "Apply free/busy and color rules to a CalDAV calendar",
		Long: `calpatch synchronizes classification metadata (TRANSP and COLOR)
onto events in a CalDAV collection, based on ordered summary-matching
rules. Writes are protected by entity-tag preconditions so concurrent
edits from other clients are never clobbered.

Connection settings come from the environment (BASE_URL, CAL_NAME,
CALDAV_USER, APP_PWD) and can be overridden per flag.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log per-object progress")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "log request-level detail")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(scrapeCmd)
}

// newLogger builds the run logger from the granularity flags.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	switch {
	case flagDebug:
		level = slog.LevelDebug
	case flagVerbose:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
