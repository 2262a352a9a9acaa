// Package reports implements the Report Writer (spec.md §4.M): the sink
// that turns accumulated Matches and Statistics into the run's visible
// output, mirroring the teacher's Output interface (plugins/outputs) —
// Connect/Write/Close lifecycle, "discard" as the null implementation.
package reports

import "github.com/huntops/evtxscan/models"

// Writer is the sink every report format implements. Connect is called
// once before the first Write; Close once after the last, regardless of
// how many files were scanned.
type Writer interface {
	Connect() error
	Write(matches []models.Match) error
	Close() error
}
