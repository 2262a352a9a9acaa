// Command evtxscan scans one EVTX file or a directory tree of them,
// applies a loaded rule corpus, and emits a CSV detection report plus
// per-file statistics. CLI parsing, banner output and the exact console
// layout are treated as assumed external concerns (spec.md §1); this is
// the minimal flag wiring needed to run the pipeline end to end.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/huntops/evtxscan/config"
	"github.com/huntops/evtxscan/internal"
	"github.com/huntops/evtxscan/pipeline"
	"github.com/huntops/evtxscan/plugins/filter"
	"github.com/huntops/evtxscan/plugins/reports"
	"github.com/huntops/evtxscan/plugins/rules"
)

func main() {
	os.Exit(run())
}

func run() int {
	var opts config.Options
	var filePath, directory, rulesDir, minLevel, outputPath, configDir, errorLogPath string
	var statistics, logonSummary, verbose, quiet, quietErrors bool
	var batchSize int

	fs := flag.NewFlagSet("evtxscan", flag.ContinueOnError)
	fs.StringVar(&filePath, "filepath", "", "scan a single .evtx file")
	fs.StringVar(&directory, "directory", "", "recursively scan a directory of .evtx files")
	fs.StringVar(&rulesDir, "rules", "", "directory of *.yml rule files (default ./rules)")
	fs.StringVar(&minLevel, "min-level", "", "drop rules below this severity (info|low|medium|high|critical)")
	fs.StringVar(&outputPath, "output", "", "CSV detection report destination; omit to skip the report")
	fs.StringVar(&configDir, "config-dir", "", "config directory holding target_eventids.txt and eventid_table.toml")
	fs.StringVar(&errorLogPath, "error-log", "", "path the deduplicated error log is flushed to")
	fs.BoolVar(&statistics, "statistics-only", false, "print per-file statistics, skip detection output")
	fs.BoolVar(&logonSummary, "logon-summary-only", false, "print only the per-user logon tally")
	fs.BoolVar(&verbose, "verbose", false, "mirror errors to stderr and print statistics for every file")
	fs.BoolVar(&quiet, "quiet", false, "suppress informational logging")
	fs.BoolVar(&quietErrors, "quiet-errors", false, "never flush the error log to disk")
	fs.IntVar(&batchSize, "batch-size", 0, "records per pipeline batch (default 5000)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return 2
	}

	opts = config.Options{
		FilePath:     filePath,
		Directory:    directory,
		RulesDir:     rulesDir,
		MinLevel:     minLevel,
		OutputPath:   outputPath,
		Statistics:   statistics,
		LogonSummary: logonSummary,
		Verbose:      verbose,
		Quiet:        quiet,
		QuietErrors:  quietErrors,
		BatchSize:    batchSize,
		ConfigDir:    configDir,
		ErrorLogPath: errorLogPath,
	}

	ctx, err := config.Load(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	log := internal.NewLogger(ctx.RunID, ctx.Verbose, ctx.Quiet)
	errLog := config.NewErrorLog(ctx.Verbose)

	ruleSet, err := rules.LoadDir(ctx.RulesDir, ctx.MinLevel, errLog)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var writer reports.Writer
	if ctx.OutputPath != "" {
		writer = reports.NewCSVWriter(ctx.OutputPath)
	} else {
		writer = &reports.Discard{}
	}

	orch := &pipeline.Orchestrator{
		Ctx:     ctx,
		RuleSet: ruleSet,
		Engine:  pipeline.NewEngine(ruleSet, ctx.EventInfoTable),
		Filter:  filter.New(ctx.EventIDAllowList),
		Writer:  writer,
		Errs:    errLog,
		Log:     log,
	}

	if err := orch.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flushErrorLog(errLog, ctx)
		return 1
	}

	flushErrorLog(errLog, ctx)
	return 0
}

func flushErrorLog(errLog *config.ErrorLog, ctx *config.RunContext) {
	if err := errLog.Flush(ctx.ErrorLogPath, ctx.QuietErrors); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
