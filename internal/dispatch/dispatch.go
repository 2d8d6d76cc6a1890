// Package dispatch issues a replay plan against the target: one goroutine
// per planned request, each sleeping its offset before sending the GET over
// a shared HTTP client.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/reget/reget/internal/emit"
	"github.com/reget/reget/internal/plan"
)

// ErrAborted reports a run cut short by user interrupt.
var ErrAborted = errors.New("aborted")

// Progress is incremented once per finished request, success or not.
// It matches the progress-bar Add method.
type Progress interface {
	Add(int) error
}

// Result is the outcome of one dispatched request. Err is nil on success.
type Result struct {
	Measurement emit.Measurement
	Err         error
}

// Dispatcher runs a plan. The client is shared by every in-flight request
// and must be safe for concurrent use.
type Dispatcher struct {
	Client   *http.Client
	Logger   zerolog.Logger
	Progress Progress
}

// NewClient returns the shared HTTP client for a replay run. The transport
// is tuned for high fan-out against a single host; no overall timeout is
// set, individual requests rely on transport defaults.
func NewClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Run dispatches every planned request and collects results in completion
// order. On context cancellation it returns the results collected so far
// together with ErrAborted; requests still in flight are abandoned.
func (d *Dispatcher) Run(ctx context.Context, requests []plan.Request) ([]Result, error) {
	// Buffered to plan size so abandoned tasks never block on send.
	results := make(chan Result, len(requests))
	for _, pr := range requests {
		go func(pr plan.Request) {
			res := d.execute(ctx, pr)
			if d.Progress != nil {
				_ = d.Progress.Add(1)
			}
			results <- res
		}(pr)
	}

	collected := make([]Result, 0, len(requests))
	for range requests {
		select {
		case res := <-results:
			collected = append(collected, res)
		case <-ctx.Done():
			return collected, ErrAborted
		}
	}

	d.logSummary(collected)
	return collected, nil
}

// execute waits out the request's offset, then issues the GET and measures
// the wall-clock time to the response.
func (d *Dispatcher) execute(ctx context.Context, pr plan.Request) Result {
	timer := time.NewTimer(pr.Offset)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return Result{Err: emit.Failure{URL: pr.URL, Cause: ctx.Err().Error()}}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pr.URL, nil)
	if err != nil {
		return Result{Err: emit.Failure{URL: pr.URL, Cause: err.Error()}}
	}

	start := time.Now()
	resp, err := d.Client.Do(req)
	if err != nil {
		return Result{Err: emit.Failure{URL: pr.URL, Cause: err.Error()}}
	}
	requiredTime := time.Since(start)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	d.Logger.Debug().
		Str("request", truncate(pr.URL, 64)).
		Dur("waited_for", pr.Offset).
		Int("status", resp.StatusCode).
		Dur("required_time", requiredTime).
		Msg("request finished")

	if resp.StatusCode >= http.StatusBadRequest {
		return Result{Err: emit.Failure{URL: pr.URL, Cause: fmt.Sprintf("HTTP %d", resp.StatusCode)}}
	}

	originalTime := pr.Record.RequiredTime
	var changePercentage float64
	if originalTime != 0 {
		changePercentage = (requiredTime.Seconds() - originalTime) / originalTime * 100
	}
	return Result{Measurement: emit.Measurement{
		URL:              pr.URL,
		Status:           resp.StatusCode,
		RequiredTime:     requiredTime.Seconds(),
		OriginalTime:     originalTime,
		ChangePercentage: changePercentage,
	}}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
