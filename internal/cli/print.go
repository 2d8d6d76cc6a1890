package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/reget/reget/internal/record"
)

func newPrintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print <input-file>",
		Short: "Parse an access-log export and print every record in order",
		Long: `Parses the provided file containing at least the fields '@timestamp',
'path' and 'params', and prints every row as a separate, structured line,
in order (by timestamp). The offset column is the distance from the
previous record.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := record.FromFile(args[0])
			if err != nil {
				return err
			}

			var (
				last     time.Time
				haveLast bool
			)
			for _, rec := range records {
				var offset time.Duration
				if haveLast {
					offset = rec.Timestamp.Sub(last)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s +%12.3f s %s%s\n",
					formatTimestamp(rec.Timestamp), offset.Seconds(), rec.Path, rec.Parameters)
				last = rec.Timestamp
				haveLast = true
			}
			return nil
		},
	}
}

// formatTimestamp renders a record timestamp for print output. Timestamps
// on a whole second carry no fractional part.
func formatTimestamp(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02T15:04:05") + " UTC"
	}
	return t.Format("2006-01-02T15:04:05.000") + " UTC"
}
