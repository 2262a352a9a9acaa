package rules

// OpBuilder compiles one operator's (field, value) pair into a Predicate.
// Mirrors the teacher's Creator-function registry pattern (see
// plugins/inputs.Add, plugins/outputs.Add) so new comparison operators can
// be registered without touching the loader's switch statement.
type OpBuilder func(field, value string) (Predicate, error)

var operators = map[Op]OpBuilder{}

// RegisterOp adds or overrides the builder for an operator name.
func RegisterOp(op Op, build OpBuilder) {
	operators[op] = build
}

func init() {
	for _, op := range []Op{OpEquals, OpEqualsFold, OpContains, OpRegex, OpGreaterThan, OpLessThan, OpWildcard} {
		op := op
		RegisterOp(op, func(field, value string) (Predicate, error) {
			return atomic(field, op, value)
		})
	}
}

// build looks up a registered operator and compiles it, falling back to
// the built-in switch in atomic() for any operator RegisterOp was never
// called for explicitly (keeps backward compatibility with literal Op
// values used directly in tests).
func build(field string, op Op, value string) (Predicate, error) {
	if b, ok := operators[op]; ok {
		return b(field, value)
	}
	return atomic(field, op, value)
}
