// Package filter implements the Event-ID Filter (spec.md §4.C): records
// whose EventID is not in a configured allow-list are dropped before
// reaching the Record Preparer.
package filter

import "github.com/huntops/evtxscan/models"

// EventIDFilter accepts a record if its EventID is in allow, or if allow
// is empty, or if the record carries no EventID at all.
type EventIDFilter struct {
	allow map[string]struct{}
}

// New builds a filter from a loaded allow-list (config.RunContext's
// EventIDAllowList). A nil or empty map disables filtering.
func New(allow map[string]struct{}) *EventIDFilter {
	return &EventIDFilter{allow: allow}
}

// Accept reports whether rec should continue into the pipeline.
func (f *EventIDFilter) Accept(rec *models.RawRecord) bool {
	if len(f.allow) == 0 {
		return true
	}
	id, ok := rec.EventID()
	if !ok {
		return true
	}
	_, present := f.allow[id]
	return present
}
