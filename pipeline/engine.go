package pipeline

import (
	"github.com/huntops/evtxscan/config"
	"github.com/huntops/evtxscan/models"
)

// Engine evaluates a RuleSet's per-event rules against each prepared
// record and forwards every record to the aggregate rules' Feed, in rule
// set order (spec.md §4.E). An EventInfo table entry with DetectFlag
// false excludes that EventID from rule evaluation entirely, even when a
// predicate would otherwise match (spec.md §4.I) — an absent table entry
// defaults to included.
type Engine struct {
	ruleSet *models.RuleSet
	info    map[string]config.EventInfo
}

// NewEngine builds an Engine over one run's RuleSet and EventID info
// table.
func NewEngine(ruleSet *models.RuleSet, info map[string]config.EventInfo) *Engine {
	return &Engine{ruleSet: ruleSet, info: info}
}

// Evaluate runs one batch through every per-event rule and feeds every
// aggregate rule, returning the Matches the per-event rules fired. Order
// within the returned slice follows rule-set order within each record,
// then batch order.
func (e *Engine) Evaluate(batch []*models.PreparedRecord) []models.Match {
	perEvent := e.ruleSet.PerEventRules()
	aggregate := e.ruleSet.AggregateRules()

	var matches []models.Match
	for _, rec := range batch {
		if !e.detectable(rec) {
			continue
		}

		for _, rule := range perEvent {
			if rule.Matches(rec) {
				matches = append(matches, e.match(rule, rec))
			}
		}
		for _, rule := range aggregate {
			rule.Feed(rec)
		}
	}
	return matches
}

func (e *Engine) detectable(rec *models.PreparedRecord) bool {
	id, ok := rec.Field(models.EventIDPath)
	if !ok {
		return true
	}
	meta, known := e.info[id]
	if !known {
		return true
	}
	return meta.DetectFlag
}

func (e *Engine) match(rule models.Rule, rec *models.PreparedRecord) models.Match {
	ts, _ := rec.Field(models.SystemTimePath)
	fields := make(map[string]string, len(rec.Flat))
	for k, v := range rec.Flat {
		fields[k] = v
	}
	return models.Match{
		RuleID:          rule.ID(),
		Severity:        rule.Severity(),
		SourcePath:      rec.SourcePath,
		RecordTimestamp: ts,
		Computer:        rec.Flat[models.ComputerPath],
		Channel:         rec.Flat[models.ChannelPath],
		EventID:         rec.Flat[models.EventIDPath],
		RecordFields:    fields,
		Title:           rule.Title(),
	}
}
