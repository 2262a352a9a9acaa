// Package config builds the immutable RunContext that every pipeline
// component is constructed with, replacing the teacher's lock-guarded
// global configuration (spec.md §9 design note) with a value passed
// explicitly down the call chain.
package config

import (
	"github.com/huntops/evtxscan/models"
)

// DefaultBatchSize is N in spec.md §4.H: the fixed number of records
// processed between pipeline checkpoints.
const DefaultBatchSize = 5000

// EventInfo annotates one EventID for statistics display: a human title
// and whether the event is flagged as detection-relevant.
type EventInfo struct {
	Title      string `toml:"title"`
	DetectFlag bool   `toml:"detect_flag"`
}

// RunContext is the immutable, fully-loaded configuration for one run.
// Built once at startup and shared read-only thereafter (spec.md §5,
// "External config ... read-only after startup").
type RunContext struct {
	// Input selection.
	FilePath  string
	Directory string

	// Rule loading.
	RulesDir string
	MinLevel models.Severity

	// Output.
	OutputPath string

	// Modes.
	StatisticsOnly   bool
	LogonSummaryOnly bool
	Verbose          bool
	Quiet            bool
	QuietErrors      bool

	// Tuning.
	BatchSize   int
	WorkerCount int

	// Domain mapping (spec.md §9 open question, resolved).
	LogonMapping models.LogonMapping

	// Loaded from ./config.
	EventIDAllowList map[string]struct{}
	EventInfoTable   map[string]EventInfo

	ErrorLogPath string

	RunID string
}
