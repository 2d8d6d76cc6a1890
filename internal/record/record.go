package record

import (
	"errors"
	"fmt"
	"time"
)

// timestampLayout is the timestamp shape the log-search backend exports:
// UTC, three-digit milliseconds, trailing Z. Nothing else is accepted.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// ErrBadTimestamp reports a timestamp that does not match the backend's
// export format.
var ErrBadTimestamp = errors.New("bad timestamp")

// AccessRecord is one recorded request, as exported from the access log.
type AccessRecord struct {
	Timestamp    time.Time
	DomainName   string
	Path         string
	Parameters   string
	RequiredTime float64 // originally recorded server processing time, seconds
}

// ParseTimestamp parses a backend timestamp like 2024-01-01T12:00:00.500Z
// into a UTC time with millisecond resolution.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
	}
	return t.UTC(), nil
}

// rawRecord is the wire shape shared by the CSV columns and the inner
// `_source` object of the JSON export.
type rawRecord struct {
	Timestamp    string  `json:"@timestamp"`
	DomainName   string  `json:"domain_name"`
	Path         string  `json:"path"`
	Parameters   string  `json:"params"`
	RequiredTime float64 `json:"target_processing_time"`
}

func (r rawRecord) toAccessRecord() (AccessRecord, error) {
	ts, err := ParseTimestamp(r.Timestamp)
	if err != nil {
		return AccessRecord{}, err
	}
	if r.Path == "" {
		return AccessRecord{}, errors.New("missing path")
	}
	return AccessRecord{
		Timestamp:    ts,
		DomainName:   r.DomainName,
		Path:         r.Path,
		Parameters:   r.Parameters,
		RequiredTime: r.RequiredTime,
	}, nil
}
