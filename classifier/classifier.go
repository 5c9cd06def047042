// Package classifier defines the boundary between this module and the ML
// subsystem that classifies and captions audio. Nothing in this package
// runs a model; it only describes the contract the repository invokes and
// provides doubles for testing without one.
package classifier

import (
	"context"
	"sort"
)

// Hit is one candidate CatID with a classifier-reported confidence.
type Hit struct {
	CatID      string
	Confidence float64 // [0,1]
}

// AnalyzeOptions carries per-call tuning; empty is a valid default.
type AnalyzeOptions struct {
	// MaxHits caps the number of hits Analyze returns; 0 means the
	// analyzer's own default (top-50 per spec.md §3).
	MaxHits int
}

// Result is the raw output of one Analyze call, ready to be stored as an
// AnalysisRecord keyed by the file's content hash.
type Result struct {
	Hits         []Hit
	Caption      string
	ModelVersion string
}

// Analyzer is the interface the repository depends on; it never inspects
// a concrete implementation's type, only this contract.
type Analyzer interface {
	Analyze(ctx context.Context, wavPath string, opts AnalyzeOptions) (Result, error)
	Ready() bool
}

// NoopAnalyzer is the zero-value collaborator: it lets a Store be
// constructed and exercised before a real ML backend is wired in. Analyze
// always fails with ErrNotReady; callers are expected to translate that
// into corerr.ModelNotReady at the repository boundary.
type NoopAnalyzer struct{}

// ErrNotReady is returned by NoopAnalyzer.Analyze.
var ErrNotReady = errNotReady{}

type errNotReady struct{}

func (errNotReady) Error() string { return "classifier not ready: no model loaded" }

func (NoopAnalyzer) Analyze(context.Context, string, AnalyzeOptions) (Result, error) {
	return Result{}, ErrNotReady
}

func (NoopAnalyzer) Ready() bool { return false }

// StaticAnalyzer is a test double that always returns a fixed result,
// regardless of the path it's asked to analyze.
type StaticAnalyzer struct {
	Result Result
	Err    error
}

func (s StaticAnalyzer) Analyze(_ context.Context, _ string, opts AnalyzeOptions) (Result, error) {
	if s.Err != nil {
		return Result{}, s.Err
	}

	hits := append([]Hit(nil), s.Result.Hits...)
	sort.Slice(hits, func(i, j int) bool { return hits[i].Confidence > hits[j].Confidence })

	limit := opts.MaxHits
	if limit <= 0 {
		limit = 50
	}

	if limit > len(hits) {
		limit = len(hits)
	}

	return Result{Hits: hits[:limit], Caption: s.Result.Caption, ModelVersion: s.Result.ModelVersion}, nil
}

func (s StaticAnalyzer) Ready() bool { return true }
