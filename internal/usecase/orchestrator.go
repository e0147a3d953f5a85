// Package usecase implements the Use-Case Orchestrator: one handler per
// tool, each following the same shape — load aggregates, enforce
// invariants, mutate in memory, persist atomically, dispatch events
// synchronously, then hand off to the Hint Enhancer before replying.
package usecase

import (
	"time"

	"github.com/emergent-company/taskvision-mcp/internal/metrics"
	"github.com/emergent-company/taskvision-mcp/internal/store"
)

// Config is the orchestrator's single configuration document.
type Config struct {
	StalenessThreshold time.Duration
	EnrichmentDefault  bool
	AlignmentCacheTTL  time.Duration
	MaxHints           int
	CascadeDepthLimit  int
	ToolDeadline       time.Duration
	OverheadBudget     time.Duration // informational only, not enforced at runtime
}

// DefaultConfig returns the orchestrator's default tuning values.
func DefaultConfig() Config {
	return Config{
		StalenessThreshold: 30 * time.Minute,
		EnrichmentDefault:  true,
		AlignmentCacheTTL:  5 * time.Minute,
		MaxHints:           6,
		CascadeDepthLimit:  4,
		ToolDeadline:       5 * time.Second,
		OverheadBudget:     100 * time.Millisecond,
	}
}

// Clock abstracts time.Now so tests can supply a fixed instant.
type Clock func() time.Time

// Orchestrator wires the repository ports, configuration, and metrics
// together to run every tool's use-case.
type Orchestrator struct {
	Repos   *store.Repositories
	Config  Config
	Metrics *metrics.Metrics
	Now     Clock

	alignmentCache *alignmentCache
}

// New constructs an Orchestrator. metricsCollector may be nil in tests that
// don't care about instrumentation.
func New(repos *store.Repositories, cfg Config, metricsCollector *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		Repos:          repos,
		Config:         cfg,
		Metrics:        metricsCollector,
		Now:            time.Now,
		alignmentCache: newAlignmentCache(cfg.AlignmentCacheTTL),
	}
}

const maxOptimisticRetries = 3
