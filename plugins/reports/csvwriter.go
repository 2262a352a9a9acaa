package reports

import (
	"encoding/csv"
	"os"

	"github.com/huntops/evtxscan/internal"
	"github.com/huntops/evtxscan/models"
)

// csvHeader is the fixed column order spec.md §6/§4.M names for the
// match report.
var csvHeader = []string{"timestamp", "computer", "channel", "event_id", "rule_id", "level", "message"}

// CSVWriter appends one row per Match to a CSV file. It refuses to write
// over an existing destination (spec.md §4.M, "never silently
// overwrites a prior run's output") — callers needing to re-run must
// choose a new path or remove the old one themselves.
type CSVWriter struct {
	path string
	f    *os.File
	w    *csv.Writer
}

// NewCSVWriter prepares (without yet opening) a writer targeting path.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

func (c *CSVWriter) Connect() error {
	if _, err := os.Stat(c.path); err == nil {
		return internal.Errorf(internal.KindConfig, "report destination %s already exists", c.path)
	} else if !os.IsNotExist(err) {
		return internal.NewError(internal.KindIO, err)
	}

	f, err := os.OpenFile(c.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return internal.NewError(internal.KindIO, err)
	}
	c.f = f
	c.w = csv.NewWriter(f)
	return c.w.Write(csvHeader)
}

func (c *CSVWriter) Write(matches []models.Match) error {
	for _, m := range matches {
		message := m.Message
		if message == "" {
			message = m.Title
		}
		row := []string{
			m.RecordTimestamp,
			m.Computer,
			m.Channel,
			m.EventID,
			m.RuleID,
			m.Severity.String(),
			message,
		}
		if err := c.w.Write(row); err != nil {
			return internal.NewError(internal.KindIO, err)
		}
	}
	return nil
}

func (c *CSVWriter) Close() error {
	if c.w == nil {
		return nil
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.f.Close()
		return internal.NewError(internal.KindIO, err)
	}
	if err := c.f.Close(); err != nil {
		return internal.NewError(internal.KindIO, err)
	}
	return nil
}
