package rules

import (
	"sort"
	"sync"
	"time"

	"github.com/huntops/evtxscan/models"
)

// fedRecord is the small, owned snapshot an aggregate rule keeps from a
// fed PreparedRecord. PreparedRecord itself is transient — discarded once
// its batch finishes evaluation (spec.md §3, BatchWindow) — so Feed must
// copy out exactly what Collect will need rather than retain the record.
type fedRecord struct {
	sourcePath string
	index      int64
	timestamp  string
	groupKey   string
	fields     map[string]string
}

// runningRule is the concrete models.Rule every loaded rule file compiles
// to: a per-event predicate, an aggregate window spec, or both.
type runningRule struct {
	id        string
	title     string
	severity  models.Severity
	predicate Predicate
	isAggregate bool

	groupBy   string
	countOp   models.CountOp
	threshold int
	window    time.Duration

	mu  sync.Mutex
	fed []fedRecord
}

func (r *runningRule) ID() string               { return r.id }
func (r *runningRule) Severity() models.Severity { return r.severity }
func (r *runningRule) Title() string             { return r.title }
func (r *runningRule) PerEvent() bool            { return r.predicate != nil }
func (r *runningRule) Aggregate() bool           { return r.isAggregate }
func (r *runningRule) GroupBy() string           { return r.groupBy }
func (r *runningRule) CountOp() models.CountOp   { return r.countOp }
func (r *runningRule) Threshold() int            { return r.threshold }
func (r *runningRule) Window() time.Duration     { return r.window }

// Matches evaluates the compiled per-event predicate. Rules without one
// (aggregate-only rules) never match directly.
func (r *runningRule) Matches(rec *models.PreparedRecord) bool {
	if r.predicate == nil {
		return false
	}
	return r.predicate(rec)
}

// Feed snapshots the fields this rule's aggregate condition needs. Safe
// for concurrent use: the Detection Engine may serialize calls, but a
// caller preferring associative merging across goroutines can call this
// from multiple workers (spec.md §4.E).
func (r *runningRule) Feed(rec *models.PreparedRecord) {
	group := ""
	if r.groupBy != "" {
		group, _ = rec.Field(r.groupBy)
	}
	ts, _ := rec.Field(models.SystemTimePath)
	var index int64
	if rec.Raw != nil {
		index = rec.Raw.Offset
	}

	fields := make(map[string]string, len(rec.Flat))
	for k, v := range rec.Flat {
		fields[k] = v
	}

	r.mu.Lock()
	r.fed = append(r.fed, fedRecord{
		sourcePath: rec.SourcePath,
		index:      index,
		timestamp:  ts,
		groupKey:   group,
		fields:     fields,
	})
	r.mu.Unlock()
}

// Collect implements the sliding-window evaluation of spec.md §4.F:
// partition by group, sort by timestamp (tie-broken by source path then
// input order), slide a window of length r.window, and emit one Match
// per burst that satisfies the threshold condition, advancing past each
// satisfied window so a single burst never emits twice.
func (r *runningRule) Collect() []models.Match {
	r.mu.Lock()
	fed := make([]fedRecord, len(r.fed))
	copy(fed, r.fed)
	r.mu.Unlock()

	groups := make(map[string][]fedRecord)
	for _, f := range fed {
		groups[f.groupKey] = append(groups[f.groupKey], f)
	}

	var groupKeys []string
	for k := range groups {
		groupKeys = append(groupKeys, k)
	}
	sort.Strings(groupKeys)

	var matches []models.Match
	for _, key := range groupKeys {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].timestamp != group[j].timestamp {
				return group[i].timestamp < group[j].timestamp
			}
			if group[i].sourcePath != group[j].sourcePath {
				return group[i].sourcePath < group[j].sourcePath
			}
			return group[i].index < group[j].index
		})

		matches = append(matches, r.slide(group)...)
	}
	return matches
}

func (r *runningRule) slide(group []fedRecord) []models.Match {
	var matches []models.Match
	i := 0
	for i < len(group) {
		start, ok := parseTimestamp(group[i].timestamp)
		j := i
		for j < len(group) {
			if !ok {
				break
			}
			t, tok := parseTimestamp(group[j].timestamp)
			if !tok || t.Sub(start) >= r.window {
				break
			}
			j++
		}
		if j == i {
			j = i + 1 // unparseable timestamp: window of one
		}

		count := j - i
		if r.countOp.Satisfied(count, r.threshold) {
			trigger := group[j-1]
			matches = append(matches, models.Match{
				RuleID:          r.id,
				Severity:        r.severity,
				SourcePath:      trigger.sourcePath,
				RecordTimestamp: trigger.timestamp,
				Computer:        trigger.fields[models.ComputerPath],
				Channel:         trigger.fields[models.ChannelPath],
				EventID:         trigger.fields[models.EventIDPath],
				RecordFields:    trigger.fields,
				Title:           r.title,
			})
			i = j
		} else {
			i++
		}
	}
	return matches
}

func parseTimestamp(ts string) (time.Time, bool) {
	if ts == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
