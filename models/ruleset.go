package models

import "sort"

// RuleSet is an ordered, immutable list of rules plus the precomputed
// union of field paths any rule in the set references (the "detection key
// set"). Created once per run.
type RuleSet struct {
	Rules          []Rule
	DetectionKeys  []string
}

// NewRuleSet orders rules by rule id ascending, whatever order they were
// loaded in, and derives the detection key set from the keys each rule
// reports needing.
func NewRuleSet(rules []Rule, keysByRule map[string][]string) *RuleSet {
	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ID() < ordered[j].ID()
	})

	seen := make(map[string]struct{})
	var keys []string
	// The Statistics Accumulator shares this same prepared-record stream
	// (spec.md §1), so its fields are always in the detection key set
	// regardless of which rules were loaded.
	for _, k := range []string{EventIDPath, SystemTimePath, ComputerPath, ChannelPath, "Event.EventData.TargetUserName"} {
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for _, r := range ordered {
		for _, k := range keysByRule[r.ID()] {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	return &RuleSet{Rules: ordered, DetectionKeys: keys}
}

// PerEventRules returns the subset of rules evaluable against a single
// record, in rule-set order.
func (rs *RuleSet) PerEventRules() []Rule {
	var out []Rule
	for _, r := range rs.Rules {
		if r.PerEvent() {
			out = append(out, r)
		}
	}
	return out
}

// AggregateRules returns the subset of rules requiring cross-record
// accumulation, in rule-set order.
func (rs *RuleSet) AggregateRules() []Rule {
	var out []Rule
	for _, r := range rs.Rules {
		if r.Aggregate() {
			out = append(out, r)
		}
	}
	return out
}
