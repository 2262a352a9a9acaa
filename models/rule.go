package models

import "time"

// CountOp is the comparison operator an aggregate rule applies between the
// window's observed count and its threshold.
type CountOp string

const (
	CountOpGTE CountOp = ">="
	CountOpGT  CountOp = ">"
	CountOpEQ  CountOp = "="
	CountOpLT  CountOp = "<"
	CountOpLTE CountOp = "<="
)

// Satisfied reports whether an observed count satisfies this operator
// against threshold.
func (op CountOp) Satisfied(count, threshold int) bool {
	switch op {
	case CountOpGTE:
		return count >= threshold
	case CountOpGT:
		return count > threshold
	case CountOpEQ:
		return count == threshold
	case CountOpLT:
		return count < threshold
	case CountOpLTE:
		return count <= threshold
	default:
		return false
	}
}

// Rule is the evaluation interface every loaded detection rule exposes.
// A rule with PerEvent true is evaluated directly against each prepared
// record; a rule with Aggregate true instead accumulates fed records and
// is finalized once, after all files have been processed, by the
// Aggregate Evaluator.
type Rule interface {
	ID() string
	Severity() Severity
	Title() string
	PerEvent() bool
	Aggregate() bool

	// Matches evaluates a per-event rule's predicate against one record.
	Matches(rec *PreparedRecord) bool

	// Feed accumulates one record into an aggregate rule's window state.
	// Called only on rules with Aggregate() == true.
	Feed(rec *PreparedRecord)

	// GroupBy, CountOp, Threshold and Window describe an aggregate rule's
	// windowed-count condition. Meaningless on per-event-only rules.
	GroupBy() string
	CountOp() CountOp
	Threshold() int
	Window() time.Duration

	// Collect finalizes an aggregate rule's accumulated state into zero or
	// more Matches. Called exactly once, after every file has been fed.
	Collect() []Match
}
