package pipeline

import (
	"testing"

	"github.com/huntops/evtxscan/models"
	"github.com/stretchr/testify/assert"
)

type collectOnlyRule struct {
	fakeRule
	matches []models.Match
}

func (r *collectOnlyRule) Collect() []models.Match { return r.matches }

func TestFinalizeAggregatesCollectsEveryAggregateRule(t *testing.T) {
	r1 := &collectOnlyRule{fakeRule: fakeRule{id: "a", aggregate: true}, matches: []models.Match{{RuleID: "a"}}}
	r2 := &collectOnlyRule{fakeRule: fakeRule{id: "b", aggregate: true}, matches: []models.Match{{RuleID: "b"}, {RuleID: "b"}}}
	perEvent := &fakeRule{id: "c", perEvent: true}

	ruleSet := models.NewRuleSet([]models.Rule{r1, r2, perEvent}, nil)

	matches := FinalizeAggregates(ruleSet)
	assert.Len(t, matches, 3)
}
