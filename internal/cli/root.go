package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var logger zerolog.Logger

// NewRootCmd creates the root reget command.
func NewRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "reget",
		Short: "Replay recorded HTTP GET traffic with accurate relative timing",
		Long: `Reget replays access-log exports against a target host, preserving the
original relative timing between requests, and reports per-response timing
deltas versus the recorded baseline.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("parsing --log-level: %w", err)
			}
			logger = zerolog.New(zerolog.ConsoleWriter{
				Out:        cmd.ErrOrStderr(),
				TimeFormat: time.RFC3339,
			}).Level(level).With().Timestamp().Logger()
			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newPrintCmd(),
		newRunCmd(),
	)

	return root
}
