package dispatch

import (
	"time"

	"github.com/codahale/hdrhistogram"
)

// logSummary reports latency percentiles over the successful requests on
// the diagnostic stream after a clean run.
func (d *Dispatcher) logSummary(results []Result) {
	hist := hdrhistogram.New(1, int64(10*time.Minute/time.Microsecond), 3)
	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		_ = hist.RecordValue(int64(res.Measurement.RequiredTime * float64(time.Second/time.Microsecond)))
	}

	event := d.Logger.Info().
		Int("requests", len(results)).
		Int("failed", failed)
	if hist.TotalCount() > 0 {
		event = event.
			Float64("p50_ms", float64(hist.ValueAtQuantile(50))/1000).
			Float64("p95_ms", float64(hist.ValueAtQuantile(95))/1000).
			Float64("p99_ms", float64(hist.ValueAtQuantile(99))/1000).
			Float64("max_ms", float64(hist.Max())/1000)
	}
	event.Msg("replay finished")
}
