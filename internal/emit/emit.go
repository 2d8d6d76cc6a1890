// Package emit writes replay results: one compact JSON line per successful
// response on the primary stream, short diagnostics for failures on the
// diagnostic stream.
package emit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Measurement is the timing outcome of one successfully replayed request.
// Field order matters: it fixes the key order of the emitted JSON line.
type Measurement struct {
	URL              string  `json:"url"`
	Status           int     `json:"status"`
	RequiredTime     float64 `json:"required_time"`
	OriginalTime     float64 `json:"original_time"`
	ChangePercentage float64 `json:"change_percentage"`
}

// Failure is a per-request error: the network call failed or the response
// status was not a success.
type Failure struct {
	URL   string
	Cause string
}

func (f Failure) Error() string {
	return fmt.Sprintf("request to %s failed: %s", f.URL, f.Cause)
}

// Writer serialises results onto a primary and a diagnostic stream. Not
// safe for concurrent use; emission runs after all requests have finished.
type Writer struct {
	primary *bufio.Writer
	enc     *json.Encoder
	diag    io.Writer
}

// NewWriter returns a Writer emitting measurement lines on primary and
// failure lines on diag.
func NewWriter(primary, diag io.Writer) *Writer {
	buffered := bufio.NewWriter(primary)
	enc := json.NewEncoder(buffered)
	// Keep URLs readable: query strings must not turn into & escapes.
	enc.SetEscapeHTML(false)
	return &Writer{primary: buffered, enc: enc, diag: diag}
}

// Success writes one measurement as a single compact JSON line.
func (w *Writer) Success(m Measurement) error {
	return w.enc.Encode(m)
}

// Failure writes a short human-readable description to the diagnostic
// stream.
func (w *Writer) Failure(err error) {
	fmt.Fprintln(w.diag, err)
}

// Flush drains buffered measurement lines to the primary stream. Callers
// must flush before process exit.
func (w *Writer) Flush() error {
	return w.primary.Flush()
}
