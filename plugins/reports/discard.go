package reports

import "github.com/huntops/evtxscan/models"

// Discard is the null Writer, used whenever no --output destination is
// given; detection matches are then dropped. Adapted from the teacher's
// discard output plugin.
type Discard struct{}

func (d *Discard) Connect() error              { return nil }
func (d *Discard) Write(_ []models.Match) error { return nil }
func (d *Discard) Close() error                { return nil }
