package models

// PreparedRecord is a RawRecord flattened against a RuleSet's detection key
// set: a quick-lookup view so matchers avoid repeated tree walks. Its
// lifetime runs from batch preparation until the batch finishes
// evaluation.
type PreparedRecord struct {
	SourcePath string
	Raw        *RawRecord
	Flat       map[string]string
}

// Field returns the flattened value at a detection key, if the key was in
// the rule set's detection key set and present on the record.
func (p *PreparedRecord) Field(key string) (string, bool) {
	v, ok := p.Flat[key]
	return v, ok
}
