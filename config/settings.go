package config

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/huntops/evtxscan/internal"
	"github.com/huntops/evtxscan/models"
	"github.com/shirou/gopsutil/cpu"
)

// Options is the set of already-parsed CLI values the external arg parser
// hands to Load. CLI parsing itself is an assumed external interface
// (spec.md §1); Options is its output shape.
type Options struct {
	FilePath   string
	Directory  string
	RulesDir   string
	MinLevel   string
	OutputPath string

	Statistics   bool
	LogonSummary bool
	Verbose      bool
	Quiet        bool
	QuietErrors  bool

	BatchSize int

	LogonSuccessID string
	LogonFailureID string

	ConfigDir    string
	ErrorLogPath string
}

const (
	defaultConfigDir    = "./config"
	defaultRulesDir     = "./rules"
	defaultErrorLogPath = "./analysis-errors.log"
	targetEventIDsFile  = "target_eventids.txt"
	eventInfoTableFile  = "eventid_table.toml"
)

// Load validates Options and assembles the immutable RunContext, reading
// the filesystem contract named in spec.md §6: a ./config directory
// holding target_eventids.txt and an EventID info table. Failures here
// are internal.KindConfig — fatal, no partial output (spec.md §7).
func Load(opts Options) (*RunContext, error) {
	if opts.FilePath != "" && opts.Directory != "" {
		return nil, internal.Errorf(internal.KindConfig, "--filepath and --directory are mutually exclusive")
	}
	if opts.FilePath == "" && opts.Directory == "" {
		return nil, internal.Errorf(internal.KindConfig, "one of --filepath or --directory is required")
	}
	if opts.FilePath != "" && !strings.HasSuffix(opts.FilePath, ".evtx") {
		return nil, internal.Errorf(internal.KindConfig, "--filepath only accepts .evtx files")
	}

	configDir := opts.ConfigDir
	if configDir == "" {
		configDir = defaultConfigDir
	}
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		return nil, internal.NewError(internal.KindConfig,
			internal.Errorf(internal.KindConfig, "config directory %q not found", configDir))
	}

	if opts.OutputPath != "" {
		if _, err := os.Stat(opts.OutputPath); err == nil {
			return nil, internal.Errorf(internal.KindConfig, "output file %q already exists", opts.OutputPath)
		}
	}

	level, ok := models.ParseSeverity(opts.MinLevel)
	if !ok && opts.MinLevel != "" {
		return nil, internal.Errorf(internal.KindConfig, "unknown --min-level %q", opts.MinLevel)
	}

	allowList, err := loadAllowList(filepath.Join(configDir, targetEventIDsFile))
	if err != nil {
		return nil, err
	}

	infoTable, err := loadEventInfoTable(filepath.Join(configDir, eventInfoTableFile))
	if err != nil {
		return nil, err
	}

	rulesDir := opts.RulesDir
	if rulesDir == "" {
		rulesDir = defaultRulesDir
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	mapping := models.DefaultLogonMapping()
	if opts.LogonSuccessID != "" {
		mapping.Success = opts.LogonSuccessID
	}
	if opts.LogonFailureID != "" {
		mapping.Failure = opts.LogonFailureID
	}

	errorLogPath := opts.ErrorLogPath
	if errorLogPath == "" {
		errorLogPath = defaultErrorLogPath
	}

	return &RunContext{
		FilePath:         opts.FilePath,
		Directory:        opts.Directory,
		RulesDir:         rulesDir,
		MinLevel:         level,
		OutputPath:       opts.OutputPath,
		StatisticsOnly:   opts.Statistics,
		LogonSummaryOnly: opts.LogonSummary,
		Verbose:          opts.Verbose,
		Quiet:            opts.Quiet,
		QuietErrors:      opts.QuietErrors,
		BatchSize:        batchSize,
		WorkerCount:      workerCount(),
		LogonMapping:     mapping,
		EventIDAllowList: allowList,
		EventInfoTable:   infoTable,
		ErrorLogPath:     errorLogPath,
		RunID:            uuid.NewString(),
	}, nil
}

// loadAllowList reads one EventID per line. A missing file or an empty
// file both mean "no filtering" (spec.md §4.C: empty allow-list passes
// everything).
func loadAllowList(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, internal.NewError(internal.KindConfig, err)
	}
	defer f.Close()

	ids := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, internal.NewError(internal.KindConfig, err)
	}
	return ids, nil
}

// loadEventInfoTable reads the optional {title, detect_flag} table keyed
// by EventID. A missing file yields an empty table, not an error: every
// EventID is then unannotated in statistics output and stays eligible for
// rule evaluation (the Engine skips only EventIDs whose entry has
// detect_flag false).
func loadEventInfoTable(path string) (map[string]EventInfo, error) {
	table := make(map[string]EventInfo)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return table, nil
	}
	if _, err := toml.DecodeFile(path, &table); err != nil {
		return nil, internal.NewError(internal.KindConfig, err)
	}
	return table, nil
}

// workerCount sizes the Record Preparer's fan-out pool to the host's
// logical CPU count (spec.md §5), preferring gopsutil's view (it accounts
// for cgroup/container limits on Linux) and falling back to
// runtime.NumCPU when that probe fails.
func workerCount() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}
