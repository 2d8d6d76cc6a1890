package cli

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/reget/reget/internal/dispatch"
	"github.com/reget/reget/internal/emit"
	"github.com/reget/reget/internal/plan"
	"github.com/reget/reget/internal/record"
	"github.com/reget/reget/internal/target"
)

func newRunCmd() *cobra.Command {
	var (
		schemeAndHost string
		mappingFile   string
		hostsToIgnore []string
		timeFactor    float64
	)

	cmd := &cobra.Command{
		Use:   "run <input-file>",
		Short: "GET recorded requests again, with accurate relative timing",
		Long: `Parses the provided file and runs the discovered requests, with accurate
relative timing, against the provided host.

Result lines are written to stdout as compact JSON, one object per
response; logging and progress go to stderr.`,
		Example: `  reget run --scheme-and-host https://staging.internal access.csv
  reget run --scheme-and-host-mapping-file hosts.json --hosts-to-ignore cdn.example access.json
  reget run -s https://staging.internal --time-factor 0.5 access.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if timeFactor <= 0 {
				return fmt.Errorf("%w: --time-factor must be positive, got %g", target.ErrBadConfig, timeFactor)
			}

			resolver, err := newResolver(schemeAndHost, mappingFile, hostsToIgnore)
			if err != nil {
				return err
			}

			records, err := record.FromFile(args[0])
			if err != nil {
				return err
			}
			requests, err := plan.Build(records, resolver, timeFactor)
			if err != nil {
				return err
			}

			logger.Info().
				Int("requests", len(requests)).
				Stringer("minimum_runtime", plan.MinimumRuntime(requests)).
				Msg("starting replay")

			bar := progressbar.NewOptions(len(requests),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionShowCount(),
				progressbar.OptionSetElapsedTime(true),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(cmd.ErrOrStderr())
				}),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			d := &dispatch.Dispatcher{
				Client:   dispatch.NewClient(),
				Logger:   logger,
				Progress: bar,
			}
			results, runErr := d.Run(ctx, requests)

			// Emit whatever completed, also on an aborted run.
			w := emit.NewWriter(cmd.OutOrStdout(), cmd.ErrOrStderr())
			for _, res := range results {
				if res.Err != nil {
					w.Failure(res.Err)
					continue
				}
				if err := w.Success(res.Measurement); err != nil {
					return err
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}

			return runErr
		},
	}

	cmd.Flags().StringVarP(&schemeAndHost, "scheme-and-host", "s", "", "scheme and host to run the GET-requests against, e.g. https://staging.internal")
	cmd.Flags().StringVar(&mappingFile, "scheme-and-host-mapping-file", "", "JSON file mapping recorded domain names to scheme://host strings")
	cmd.Flags().StringArrayVar(&hostsToIgnore, "hosts-to-ignore", nil, "recorded domain to skip (repeatable)")
	cmd.Flags().Float64Var(&timeFactor, "time-factor", 1.0, "factor in which the requests should be fulfilled; 0.5 finishes in half the time (double the load), 2.0 in double the time (half the load)")
	cmd.MarkFlagsOneRequired("scheme-and-host", "scheme-and-host-mapping-file")
	cmd.MarkFlagsMutuallyExclusive("scheme-and-host", "scheme-and-host-mapping-file")

	return cmd
}

func newResolver(schemeAndHost, mappingFile string, hostsToIgnore []string) (*target.Resolver, error) {
	if mappingFile != "" {
		mapping, err := target.LoadMapping(mappingFile)
		if err != nil {
			return nil, err
		}
		return target.NewMapping(mapping, hostsToIgnore)
	}
	return target.NewUniform(schemeAndHost, hostsToIgnore)
}
