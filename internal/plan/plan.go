// Package plan turns a sorted record list into the ordered list of timed
// GET requests a replay run will dispatch.
package plan

import (
	"errors"
	"time"

	"github.com/reget/reget/internal/record"
	"github.com/reget/reget/internal/target"
)

// ErrEmptyPlan reports that no records survived host resolution.
var ErrEmptyPlan = errors.New("no requests to replay")

// Request is one planned GET: the composed absolute URL and the duration
// to wait from plan start before issuing it.
type Request struct {
	Offset time.Duration
	URL    string
	Record record.AccessRecord
}

// Build constructs the plan from records already sorted by timestamp.
// The first surviving record's timestamp anchors the offsets, so the first
// planned request always has offset zero; each later offset is the distance
// from the anchor multiplied by factor. A factor below 1 compresses the
// replay (more load), above 1 stretches it. The URL is composed by plain
// concatenation; path and parameters are taken verbatim from the record.
func Build(records []record.AccessRecord, resolver *target.Resolver, factor float64) ([]Request, error) {
	var (
		anchor     time.Time
		haveAnchor bool
		requests   []Request
	)
	for _, rec := range records {
		schemeAndHost, ok, err := resolver.Resolve(rec)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		if !haveAnchor {
			anchor = rec.Timestamp
			haveAnchor = true
		}
		offset := time.Duration(float64(rec.Timestamp.Sub(anchor)) * factor)
		requests = append(requests, Request{
			Offset: offset,
			URL:    schemeAndHost + rec.Path + rec.Parameters,
			Record: rec,
		})
	}
	if len(requests) == 0 {
		return nil, ErrEmptyPlan
	}
	return requests, nil
}

// MinimumRuntime is the offset of the last planned request: the shortest
// wall-clock time the run can possibly take.
func MinimumRuntime(requests []Request) time.Duration {
	if len(requests) == 0 {
		return 0
	}
	return requests[len(requests)-1].Offset
}
