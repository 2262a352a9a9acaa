// Package rules implements the per-event predicate language and the rule
// loader (spec.md §4.E, §4.L): boolean composition of atomic field
// comparisons over a PreparedRecord's flattened view.
package rules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
	"github.com/huntops/evtxscan/models"
)

// Op names one atomic comparison spec.md §4.E lists: equality,
// case-insensitive equality, substring, regex, numeric <, >, wildcard.
type Op string

const (
	OpEquals       Op = "eq"
	OpEqualsFold   Op = "ieq"
	OpContains     Op = "contains"
	OpRegex        Op = "regex"
	OpGreaterThan  Op = "gt"
	OpLessThan     Op = "lt"
	OpWildcard     Op = "wildcard"
)

// Predicate is a compiled boolean expression over a PreparedRecord. Absent
// fields compare unequal to any literal (spec.md §4.E).
type Predicate func(rec *models.PreparedRecord) bool

// atomic builds a single field/op/value comparison. An unknown op or an
// unparseable regex, glob or numeric literal is returned as an error; the
// loader then skips the whole rule file with a Rule-kind warning.
func atomic(field string, op Op, value string) (Predicate, error) {
	switch op {
	case OpEquals:
		return func(rec *models.PreparedRecord) bool {
			v, ok := rec.Field(field)
			return ok && v == value
		}, nil

	case OpEqualsFold:
		return func(rec *models.PreparedRecord) bool {
			v, ok := rec.Field(field)
			return ok && strings.EqualFold(v, value)
		}, nil

	case OpContains:
		return func(rec *models.PreparedRecord) bool {
			v, ok := rec.Field(field)
			return ok && strings.Contains(v, value)
		}, nil

	case OpRegex:
		re, err := regexp.Compile(value)
		if err != nil {
			return nil, err
		}
		return func(rec *models.PreparedRecord) bool {
			v, ok := rec.Field(field)
			return ok && re.MatchString(v)
		}, nil

	case OpWildcard:
		// Backslashes match literally (Windows paths), so the pattern has
		// no escape character.
		g, err := glob.Compile(strings.ReplaceAll(value, `\`, `\\`))
		if err != nil {
			return nil, err
		}
		return func(rec *models.PreparedRecord) bool {
			v, ok := rec.Field(field)
			return ok && g.Match(v)
		}, nil

	case OpGreaterThan:
		threshold, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, err
		}
		return func(rec *models.PreparedRecord) bool {
			v, ok := numericField(rec, field)
			return ok && v > threshold
		}, nil

	case OpLessThan:
		threshold, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, err
		}
		return func(rec *models.PreparedRecord) bool {
			v, ok := numericField(rec, field)
			return ok && v < threshold
		}, nil

	default:
		return nil, &unknownOpError{op: string(op)}
	}
}

func numericField(rec *models.PreparedRecord, field string) (float64, bool) {
	v, ok := rec.Field(field)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// And composes predicates conjunctively; an empty slice is vacuously true.
func And(preds ...Predicate) Predicate {
	return func(rec *models.PreparedRecord) bool {
		for _, p := range preds {
			if !p(rec) {
				return false
			}
		}
		return true
	}
}

// Or composes predicates disjunctively; an empty slice is vacuously false.
func Or(preds ...Predicate) Predicate {
	return func(rec *models.PreparedRecord) bool {
		for _, p := range preds {
			if p(rec) {
				return true
			}
		}
		return false
	}
}

// Not negates a single predicate.
func Not(p Predicate) Predicate {
	return func(rec *models.PreparedRecord) bool {
		return !p(rec)
	}
}

type unknownOpError struct{ op string }

func (e *unknownOpError) Error() string {
	return "unknown predicate operator " + e.op
}
