package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reget/reget/internal/record"
	"github.com/reget/reget/internal/target"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func recordAt(offset time.Duration, domain, path string) record.AccessRecord {
	return record.AccessRecord{
		Timestamp:    epoch.Add(offset),
		DomainName:   domain,
		Path:         path,
		RequiredTime: 0.1,
	}
}

func uniform(t *testing.T, ignore ...string) *target.Resolver {
	t.Helper()
	r, err := target.NewUniform("https://staging.internal", ignore)
	require.NoError(t, err)
	return r
}

func TestBuild_Offsets(t *testing.T) {
	records := []record.AccessRecord{
		recordAt(0, "", "/a"),
		recordAt(500*time.Millisecond, "", "/b"),
		recordAt(2*time.Second, "", "/c"),
	}

	requests, err := Build(records, uniform(t), 1.0)
	require.NoError(t, err)
	require.Len(t, requests, 3)
	assert.Equal(t, time.Duration(0), requests[0].Offset)
	assert.Equal(t, 500*time.Millisecond, requests[1].Offset)
	assert.Equal(t, 2*time.Second, requests[2].Offset)
}

func TestBuild_OffsetsScaledByFactor(t *testing.T) {
	records := []record.AccessRecord{
		recordAt(0, "", "/a"),
		recordAt(500*time.Millisecond, "", "/b"),
		recordAt(2*time.Second, "", "/c"),
	}

	requests, err := Build(records, uniform(t), 0.5)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), requests[0].Offset)
	assert.Equal(t, 250*time.Millisecond, requests[1].Offset)
	assert.Equal(t, time.Second, requests[2].Offset)
}

func TestBuild_OffsetsNonDecreasing(t *testing.T) {
	records := []record.AccessRecord{
		recordAt(0, "", "/a"),
		recordAt(time.Millisecond, "", "/b"),
		recordAt(time.Millisecond, "", "/c"),
		recordAt(3*time.Second, "", "/d"),
	}

	requests, err := Build(records, uniform(t), 2.0)
	require.NoError(t, err)
	for i := 1; i < len(requests); i++ {
		assert.GreaterOrEqual(t, requests[i].Offset, requests[i-1].Offset)
	}
}

func TestBuild_URLComposition(t *testing.T) {
	records := []record.AccessRecord{
		{Timestamp: epoch, Path: "/search", Parameters: "?q=a%20b&page=2"},
	}

	requests, err := Build(records, uniform(t), 1.0)
	require.NoError(t, err)
	assert.Equal(t, "https://staging.internal/search?q=a%20b&page=2", requests[0].URL)
}

func TestBuild_IgnoredDomainsProduceNoRequest(t *testing.T) {
	records := []record.AccessRecord{
		recordAt(0, "a.example", "/a"),
		recordAt(time.Second, "b.example", "/b"),
	}

	requests, err := Build(records, uniform(t, "a.example"), 1.0)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "https://staging.internal/b", requests[0].URL)
}

func TestBuild_AnchorIsFirstSurvivingRecord(t *testing.T) {
	records := []record.AccessRecord{
		recordAt(0, "a.example", "/dropped"),
		recordAt(time.Second, "b.example", "/first"),
		recordAt(3*time.Second, "b.example", "/second"),
	}

	requests, err := Build(records, uniform(t, "a.example"), 1.0)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, time.Duration(0), requests[0].Offset)
	assert.Equal(t, 2*time.Second, requests[1].Offset)
}

func TestBuild_MappingMissAborts(t *testing.T) {
	resolver, err := target.NewMapping(map[string]string{"a.example": "https://a"}, nil)
	require.NoError(t, err)

	records := []record.AccessRecord{recordAt(0, "b.example", "/x")}
	_, err = Build(records, resolver, 1.0)
	assert.ErrorIs(t, err, target.ErrUnmapped)
}

func TestBuild_EmptyPlan(t *testing.T) {
	_, err := Build(nil, uniform(t), 1.0)
	assert.ErrorIs(t, err, ErrEmptyPlan)

	// All records dropped counts as empty too.
	records := []record.AccessRecord{recordAt(0, "a.example", "/x")}
	_, err = Build(records, uniform(t, "a.example"), 1.0)
	assert.ErrorIs(t, err, ErrEmptyPlan)
}

func TestMinimumRuntime(t *testing.T) {
	records := []record.AccessRecord{
		recordAt(0, "", "/a"),
		recordAt(90*time.Second, "", "/b"),
	}
	requests, err := Build(records, uniform(t), 1.0)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, MinimumRuntime(requests))
	assert.Equal(t, time.Duration(0), MinimumRuntime(nil))
}
