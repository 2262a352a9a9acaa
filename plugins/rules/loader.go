package rules

import (
	"os"
	"path/filepath"

	"github.com/huntops/evtxscan/internal"
	"github.com/huntops/evtxscan/models"
	"gopkg.in/yaml.v2"
)

// ruleFile is the on-disk YAML shape the loader accepts: a scoped but
// real grammar covering everything spec.md §3/§4.E names for a Rule —
// id, severity, a boolean predicate tree, and an optional aggregate
// condition.
type ruleFile struct {
	ID        string         `yaml:"id"`
	Title     string         `yaml:"title"`
	Severity  string         `yaml:"severity"`
	Predicate *predicateNode `yaml:"predicate,omitempty"`
	Aggregate *aggregateSpec `yaml:"aggregate,omitempty"`
}

type predicateNode struct {
	Field string `yaml:"field,omitempty"`
	Op    string `yaml:"op,omitempty"`
	Value string `yaml:"value,omitempty"`

	And []predicateNode `yaml:"and,omitempty"`
	Or  []predicateNode `yaml:"or,omitempty"`
	Not *predicateNode  `yaml:"not,omitempty"`
}

type aggregateSpec struct {
	GroupBy   string            `yaml:"group_by"`
	CountOp   string            `yaml:"count_op"`
	Threshold int               `yaml:"threshold"`
	Window    internal.Duration `yaml:"window"`
}

// LoadDir reads every *.yml/*.yaml file under dir, compiles each into a
// models.Rule, drops rules below minLevel, and returns a RuleSet with its
// precomputed detection key set. A malformed individual rule file is a
// Rule-kind error: it is skipped with a warning, never fatal (spec.md
// §7). A missing directory yields an empty, valid RuleSet so a
// detection-less run (e.g. --statistics-only) still proceeds; any other
// failure to read the directory is returned as an IO-kind error.
func LoadDir(dir string, minLevel models.Severity, errs internal.ErrorSink) (*models.RuleSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return models.NewRuleSet(nil, nil), nil
		}
		return nil, internal.NewError(internal.KindIO, err)
	}

	var loaded []models.Rule
	keysByRule := make(map[string][]string)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yml" && ext != ".yaml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		rule, keys, err := compileFile(path)
		if err != nil {
			errs.Push("loading rule %s: %v", path, err)
			continue
		}
		if rule.Severity() < minLevel {
			continue
		}

		loaded = append(loaded, rule)
		keysByRule[rule.ID()] = keys
	}

	return models.NewRuleSet(loaded, keysByRule), nil
}

func compileFile(path string) (*runningRule, []string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, internal.NewError(internal.KindIO, err)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(raw, &rf); err != nil {
		return nil, nil, internal.NewError(internal.KindRule, err)
	}
	if rf.ID == "" {
		return nil, nil, internal.Errorf(internal.KindRule, "rule file %s is missing id", path)
	}

	severity, ok := models.ParseSeverity(rf.Severity)
	if !ok {
		severity = models.SeverityInfo
	}

	rule := &runningRule{id: rf.ID, title: rf.Title, severity: severity}
	var keys []string

	if rf.Predicate != nil {
		pred, predKeys, err := compileNode(*rf.Predicate)
		if err != nil {
			return nil, nil, internal.NewError(internal.KindRule, err)
		}
		rule.predicate = pred
		keys = append(keys, predKeys...)
	}

	if rf.Aggregate != nil {
		rule.isAggregate = true
		rule.groupBy = rf.Aggregate.GroupBy
		rule.countOp = models.CountOp(rf.Aggregate.CountOp)
		rule.threshold = rf.Aggregate.Threshold
		if rule.groupBy != "" {
			keys = append(keys, rule.groupBy)
		}
		if rf.Aggregate.Window.Duration <= 0 {
			return nil, nil, internal.Errorf(internal.KindRule, "rule %s: aggregate window must be set (e.g. \"60s\")", rf.ID)
		}
		rule.window = rf.Aggregate.Window.Duration
	}

	return rule, dedupe(keys), nil
}

func compileNode(n predicateNode) (Predicate, []string, error) {
	switch {
	case len(n.And) > 0:
		var preds []Predicate
		var keys []string
		for _, child := range n.And {
			p, k, err := compileNode(child)
			if err != nil {
				return nil, nil, err
			}
			preds = append(preds, p)
			keys = append(keys, k...)
		}
		return And(preds...), keys, nil

	case len(n.Or) > 0:
		var preds []Predicate
		var keys []string
		for _, child := range n.Or {
			p, k, err := compileNode(child)
			if err != nil {
				return nil, nil, err
			}
			preds = append(preds, p)
			keys = append(keys, k...)
		}
		return Or(preds...), keys, nil

	case n.Not != nil:
		p, k, err := compileNode(*n.Not)
		if err != nil {
			return nil, nil, err
		}
		return Not(p), k, nil

	default:
		p, err := build(n.Field, Op(n.Op), n.Value)
		if err != nil {
			return nil, nil, err
		}
		return p, []string{n.Field}, nil
	}
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	var out []string
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
