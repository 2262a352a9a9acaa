package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func prepared(eventID, ts, user string) *PreparedRecord {
	flat := map[string]string{}
	if eventID != "" {
		flat[EventIDPath] = eventID
	}
	if ts != "" {
		flat[SystemTimePath] = ts
	}
	if user != "" {
		flat["Event.EventData.TargetUserName"] = user
	}
	return &PreparedRecord{SourcePath: "test.evtx", Flat: flat}
}

func TestStatisticsIngestCountsAndBounds(t *testing.T) {
	stats := NewStatistics("test.evtx", DefaultLogonMapping())

	batch := []*PreparedRecord{
		prepared("4624", "2024-01-01T00:00:10Z", "alice"),
		prepared("4625", "2024-01-01T00:00:05Z", "alice"),
		prepared("4688", "2024-01-01T00:00:20Z", ""),
	}
	stats.Ingest(batch)

	assert.Equal(t, uint64(3), stats.Total)
	assert.Equal(t, "2024-01-01T00:00:05Z", stats.FirstTS)
	assert.Equal(t, "2024-01-01T00:00:20Z", stats.LastTS)
	assert.Equal(t, uint64(1), stats.ByEventID["4624"])
	assert.Equal(t, uint64(1), stats.ByEventID["4625"])
	assert.Equal(t, uint64(1), stats.ByEventID["4688"])
}

func TestStatisticsLogonTally(t *testing.T) {
	stats := NewStatistics("test.evtx", DefaultLogonMapping())

	stats.Ingest([]*PreparedRecord{
		prepared("4624", "t1", "alice"),
		prepared("4624", "t2", "alice"),
		prepared("4625", "t3", "alice"),
		prepared("4625", "t4", "bob"),
	})

	assert.Equal(t, uint64(2), stats.ByUser["alice"].Succeeded)
	assert.Equal(t, uint64(1), stats.ByUser["alice"].Failed)
	assert.Equal(t, uint64(1), stats.ByUser["bob"].Failed)
	assert.Equal(t, uint64(0), stats.ByUser["bob"].Succeeded)
}

func TestStatisticsRecordsWithoutEventIDAreCountedButNotTallied(t *testing.T) {
	stats := NewStatistics("test.evtx", DefaultLogonMapping())

	stats.Ingest([]*PreparedRecord{prepared("", "t1", "")})

	assert.Equal(t, uint64(1), stats.Total)
	assert.Empty(t, stats.ByEventID)
}
