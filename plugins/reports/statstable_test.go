package reports

import (
	"strings"
	"testing"

	"github.com/huntops/evtxscan/config"
	"github.com/huntops/evtxscan/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteStatsTableOrdersEventIDsByCountDescending(t *testing.T) {
	stats := models.NewStatistics("test.evtx", models.DefaultLogonMapping())
	stats.ByEventID["4624"] = 3
	stats.ByEventID["1"] = 10
	stats.ByEventID["4625"] = 10

	var buf strings.Builder
	require.NoError(t, WriteStatsTable(&buf, stats, map[string]config.EventInfo{}))

	var rows []string
	inTable := false
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "event id") {
			inTable = true
			continue
		}
		if !inTable || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			break
		}
		rows = append(rows, fields[0])
	}

	require.Equal(t, []string{"1", "4625", "4624"}, rows)
}

func TestWriteLogonSummaryOrdersUsersAlphabetically(t *testing.T) {
	stats := models.NewStatistics("test.evtx", models.DefaultLogonMapping())
	stats.ByUser["zed"] = &models.UserLogonTally{Succeeded: 1}
	stats.ByUser["alice"] = &models.UserLogonTally{Failed: 2}

	var buf strings.Builder
	require.NoError(t, WriteLogonSummary(&buf, stats))

	out := buf.String()
	assert.Less(t, strings.Index(out, "alice"), strings.Index(out, "zed"))
}
