package reports

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/huntops/evtxscan/config"
	"github.com/huntops/evtxscan/models"
)

// WriteStatsTable renders one file's Statistics as an aligned console
// table (spec.md §4.G): totals, timestamp bounds, an EventID histogram
// annotated from the loaded EventInfo table, and the per-user logon
// tally. No pack library formats aligned plain-text tables, so this
// uses the standard library's tabwriter rather than a domain
// dependency.
func WriteStatsTable(w io.Writer, stats *models.Statistics, info map[string]config.EventInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "file\t%s\n", stats.FilePath)
	fmt.Fprintf(tw, "total events\t%d\n", stats.Total)
	fmt.Fprintf(tw, "first timestamp\t%s\n", stats.FirstTS)
	fmt.Fprintf(tw, "last timestamp\t%s\n", stats.LastTS)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "event id\tcount\ttitle\tdetect")
	for _, id := range byCountDesc(stats.ByEventID) {
		meta := info[id]
		detect := ""
		if meta.DetectFlag {
			detect = "yes"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", id, stats.ByEventID[id], meta.Title, detect)
	}

	if len(stats.ByUser) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "user\tfailed logons\tsucceeded logons")
		for _, user := range sortedUserKeys(stats.ByUser) {
			tally := stats.ByUser[user]
			fmt.Fprintf(tw, "%s\t%d\t%d\n", user, tally.Failed, tally.Succeeded)
		}
	}

	return tw.Flush()
}

// WriteLogonSummary renders only the per-user logon tally, for
// --logon-summary-only runs that skip the full statistics table.
func WriteLogonSummary(w io.Writer, stats *models.Statistics) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "file\t%s\n", stats.FilePath)
	fmt.Fprintln(tw, "user\tfailed logons\tsucceeded logons")
	for _, user := range sortedUserKeys(stats.ByUser) {
		tally := stats.ByUser[user]
		fmt.Fprintf(tw, "%s\t%d\t%d\n", user, tally.Failed, tally.Succeeded)
	}

	return tw.Flush()
}

// byCountDesc orders EventIDs by count descending, breaking ties by
// EventID ascending (spec.md §4.G), matching the original tool's
// `mapsorted.sort_by(|x, y| y.1.cmp(&x.1))`.
func byCountDesc(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func sortedUserKeys(m map[string]*models.UserLogonTally) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
