package rules

import (
	"testing"
	"time"

	"github.com/huntops/evtxscan/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fed(t *testing.T, groupBy, group string, offsetSeconds int) *models.PreparedRecord {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := base.Add(time.Duration(offsetSeconds) * time.Second).Format(time.RFC3339)
	flat := map[string]string{
		models.SystemTimePath: ts,
	}
	if groupBy != "" {
		flat[groupBy] = group
	}
	return &models.PreparedRecord{SourcePath: "test.evtx", Flat: flat}
}

// TestAggregateBurstEmitsOneMatchAnchoredAtWindowClose reproduces the
// five-logons-in-sixty-seconds scenario: events at t=0,10,20,30,40,300s
// for the same user, threshold count>=5 within a 60s window. Only the
// first five fall inside one window, so exactly one Match should fire,
// anchored at the triggering (fifth) event's timestamp (t=40s); the lone
// event at t=300s never reaches the threshold on its own.
func TestAggregateBurstEmitsOneMatchAnchoredAtWindowClose(t *testing.T) {
	rule := &runningRule{
		id:        "burst-logon",
		severity:  models.SeverityHigh,
		isAggregate: true,
		groupBy:   "user",
		countOp:   models.CountOpGTE,
		threshold: 5,
		window:    60 * time.Second,
	}

	offsets := []int{0, 10, 20, 30, 40, 300}
	for _, off := range offsets {
		rule.Feed(fed(t, "user", "alice", off))
	}

	matches := rule.Collect()
	require.Len(t, matches, 1)
	assert.Equal(t, "2024-01-01T00:00:40Z", matches[0].RecordTimestamp)
	assert.Equal(t, "burst-logon", matches[0].RuleID)
}

func TestAggregatePartitionsByGroup(t *testing.T) {
	rule := &runningRule{
		id:          "burst-logon",
		isAggregate: true,
		groupBy:     "user",
		countOp:     models.CountOpGTE,
		threshold:   3,
		window:      60 * time.Second,
	}

	for _, off := range []int{0, 10, 20} {
		rule.Feed(fed(t, "user", "alice", off))
	}
	for _, off := range []int{0, 10} {
		rule.Feed(fed(t, "user", "bob", off))
	}

	matches := rule.Collect()
	require.Len(t, matches, 1)
}

func TestAggregateNeverEmitsSameBurstTwice(t *testing.T) {
	rule := &runningRule{
		id:          "burst-logon",
		isAggregate: true,
		groupBy:     "user",
		countOp:     models.CountOpGTE,
		threshold:   2,
		window:      10 * time.Second,
	}

	for _, off := range []int{0, 5, 6, 7, 20, 25} {
		rule.Feed(fed(t, "user", "alice", off))
	}

	matches := rule.Collect()
	// the window takes every record within 10s of its first one, so
	// [0,5,6,7] is one triggering burst at t=7, and the scan resumes
	// past it: [20,25] is the next (and only other) burst.
	require.Len(t, matches, 2)
	assert.Equal(t, "2024-01-01T00:00:07Z", matches[0].RecordTimestamp)
	assert.Equal(t, "2024-01-01T00:00:25Z", matches[1].RecordTimestamp)
}
