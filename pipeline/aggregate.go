package pipeline

import "github.com/huntops/evtxscan/models"

// FinalizeAggregates collects every aggregate rule's accumulated window
// state into Matches, once, after every file in the run has been fed
// (spec.md §4.F). Rule order is preserved; Matches within a rule follow
// that rule's own group/window ordering.
func FinalizeAggregates(ruleSet *models.RuleSet) []models.Match {
	var matches []models.Match
	for _, rule := range ruleSet.AggregateRules() {
		matches = append(matches, rule.Collect()...)
	}
	return matches
}
