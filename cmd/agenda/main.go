// Package main is the attendee and organizer terminal client.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "time/tzdata"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	baseURL string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "agenda",
		Short:         "Julefagdag agenda, favorites and feedback",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.baseURL, "server", "", "API base URL (default AGENDA_BASE_URL)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(newListCmd(opts))
	root.AddCommand(newWatchCmd(opts))
	root.AddCommand(newFavoritesCmd(opts))
	root.AddCommand(newFeedbackCmd(opts))
	root.AddCommand(newEventFeedbackCmd(opts))
	root.AddCommand(newAdminCmd(opts))
	return root
}

// newLogger logs JSON to stderr; warnings only unless verbose.
func newLogger(verbose bool) *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
