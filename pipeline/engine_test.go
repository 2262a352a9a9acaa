package pipeline

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/huntops/evtxscan/config"
	"github.com/huntops/evtxscan/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRule struct {
	id        string
	perEvent  bool
	aggregate bool
	matchOn   string
	fedCount  int
}

func (r *fakeRule) ID() string        { return r.id }
func (r *fakeRule) Severity() models.Severity { return models.SeverityHigh }
func (r *fakeRule) Title() string     { return r.id }
func (r *fakeRule) PerEvent() bool    { return r.perEvent }
func (r *fakeRule) Aggregate() bool   { return r.aggregate }
func (r *fakeRule) Matches(rec *models.PreparedRecord) bool {
	v, _ := rec.Field(models.EventIDPath)
	return v == r.matchOn
}
func (r *fakeRule) Feed(*models.PreparedRecord)  { r.fedCount++ }
func (r *fakeRule) GroupBy() string              { return "" }
func (r *fakeRule) CountOp() models.CountOp      { return models.CountOpGTE }
func (r *fakeRule) Threshold() int               { return 0 }
func (r *fakeRule) Window() time.Duration        { return 0 }
func (r *fakeRule) Collect() []models.Match      { return nil }

func recordWithID(id string) *models.PreparedRecord {
	return &models.PreparedRecord{
		SourcePath: "test.evtx",
		Flat:       map[string]string{models.EventIDPath: id},
	}
}

func TestEngineEvaluatePerEventRule(t *testing.T) {
	rule := &fakeRule{id: "r1", perEvent: true, matchOn: "4624"}
	ruleSet := models.NewRuleSet([]models.Rule{rule}, nil)
	engine := NewEngine(ruleSet, nil)

	matches := engine.Evaluate([]*models.PreparedRecord{recordWithID("4624"), recordWithID("9999")})
	require.Len(t, matches, 1)
	assert.Equal(t, "r1", matches[0].RuleID)
	assert.Equal(t, "4624", matches[0].EventID)
}

func TestEngineFeedsAggregateRulesForEveryRecord(t *testing.T) {
	rule := &fakeRule{id: "agg", aggregate: true}
	ruleSet := models.NewRuleSet([]models.Rule{rule}, nil)
	engine := NewEngine(ruleSet, nil)

	engine.Evaluate([]*models.PreparedRecord{recordWithID("1"), recordWithID("2"), recordWithID("3")})
	assert.Equal(t, 3, rule.fedCount)
}

func TestEngineSkipsRecordsFlaggedNonDetectable(t *testing.T) {
	rule := &fakeRule{id: "r1", perEvent: true, matchOn: "4624"}
	ruleSet := models.NewRuleSet([]models.Rule{rule}, nil)
	info := map[string]config.EventInfo{"4624": {DetectFlag: false}}
	engine := NewEngine(ruleSet, info)

	matches := engine.Evaluate([]*models.PreparedRecord{recordWithID("4624")})
	assert.Empty(t, matches)
}

func TestEngineEvaluateProducesExpectedMatchShape(t *testing.T) {
	rule := &fakeRule{id: "r1", perEvent: true, matchOn: "4624"}
	ruleSet := models.NewRuleSet([]models.Rule{rule}, nil)
	engine := NewEngine(ruleSet, nil)

	matches := engine.Evaluate([]*models.PreparedRecord{recordWithID("4624")})

	want := []models.Match{{
		RuleID:   "r1",
		Severity: models.SeverityHigh,
		Title:    "r1",
		EventID:  "4624",
	}}
	if diff := cmp.Diff(want, matches, cmpopts.IgnoreFields(models.Match{}, "SourcePath", "RecordTimestamp", "RecordFields")); diff != "" {
		t.Errorf("unexpected match shape (-want +got):\n%s", diff)
	}
}

func TestEngineUnknownEventIDDefaultsToDetectable(t *testing.T) {
	rule := &fakeRule{id: "r1", perEvent: true, matchOn: "4624"}
	ruleSet := models.NewRuleSet([]models.Rule{rule}, nil)
	info := map[string]config.EventInfo{"9999": {DetectFlag: false}}
	engine := NewEngine(ruleSet, info)

	matches := engine.Evaluate([]*models.PreparedRecord{recordWithID("4624")})
	assert.Len(t, matches, 1)
}
