package pipeline

import (
	"context"
	"os"

	"github.com/huntops/evtxscan/config"
	"github.com/huntops/evtxscan/internal"
	"github.com/huntops/evtxscan/models"
	"github.com/huntops/evtxscan/plugins/enumerator"
	"github.com/huntops/evtxscan/plugins/filter"
	"github.com/huntops/evtxscan/plugins/reports"
	"github.com/huntops/evtxscan/plugins/source"
	"github.com/sirupsen/logrus"
)

// Orchestrator drives the fixed per-file loop spec.md §4.H describes:
// enumerate, open, filter, batch to N, prepare, detect, repeat — then
// finalize every aggregate rule exactly once after the last file.
type Orchestrator struct {
	Ctx     *config.RunContext
	RuleSet *models.RuleSet
	Engine  *Engine
	Filter  *filter.EventIDFilter
	Writer  reports.Writer
	Errs    internal.ErrorSink
	Log     logrus.FieldLogger
}

// Run processes every .evtx file reachable from Ctx.FilePath or
// Ctx.Directory, then finalizes aggregate rules and flushes their
// Matches. A Config/Internal-kind error aborts the run; any other
// per-file error is logged to Errs and the next file is attempted
// (spec.md §7).
func (o *Orchestrator) Run() error {
	root := o.Ctx.FilePath
	if root == "" {
		root = o.Ctx.Directory
	}

	files, err := enumerator.Enumerate(root, o.Errs, o.Log)
	if err != nil {
		return err
	}

	if err := o.Writer.Connect(); err != nil {
		return err
	}
	defer o.Writer.Close()

	for _, path := range files {
		if o.Log != nil {
			o.Log.WithField("file", path).Info("processing")
		}
		if err := o.processFile(path); err != nil {
			if ierr, ok := err.(*internal.Error); ok && ierr.Fatal() {
				return err
			}
			o.Errs.Push("processing %s: %v", path, err)
		}
	}

	final := FinalizeAggregates(o.RuleSet)
	if len(final) > 0 && !o.Ctx.StatisticsOnly && !o.Ctx.LogonSummaryOnly {
		if err := o.Writer.Write(final); err != nil {
			o.Errs.Push("writing aggregate matches: %v", err)
		}
	}
	return nil
}

func (o *Orchestrator) processFile(path string) error {
	stream, err := source.Open(path)
	if err != nil {
		return err
	}

	stats := models.NewStatistics(path, o.Ctx.LogonMapping)
	batch := make([]*models.RawRecord, 0, o.Ctx.BatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		prepared, err := Prepare(context.Background(), batch, o.RuleSet.DetectionKeys, o.Ctx.WorkerCount)
		if err != nil {
			return internal.NewError(internal.KindInternal, err)
		}
		stats.Ingest(prepared)

		matches := o.Engine.Evaluate(prepared)
		if len(matches) > 0 && !o.Ctx.StatisticsOnly && !o.Ctx.LogonSummaryOnly {
			if err := o.Writer.Write(matches); err != nil {
				return err
			}
		}
		batch = batch[:0]
		return nil
	}

	for {
		rec, recErr, ok := stream.Next()
		if !ok {
			break
		}
		if recErr != nil {
			o.Errs.Push("decoding %s: %v", path, recErr)
			continue
		}
		if !o.Filter.Accept(rec) {
			continue
		}
		batch = append(batch, rec)
		if len(batch) >= o.Ctx.BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	if o.Ctx.LogonSummaryOnly {
		return reports.WriteLogonSummary(os.Stdout, stats)
	}
	if o.Ctx.StatisticsOnly || o.Ctx.Verbose {
		return reports.WriteStatsTable(os.Stdout, stats, o.Ctx.EventInfoTable)
	}
	return nil
}
