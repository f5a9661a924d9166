// Package batch runs before/after comparisons over a list of file pairs,
// strictly sequentially, with each pair isolated behind its own deadline.
// A failed or timed-out pair is recorded as a synthetic ERROR issue and the
// batch carries on; nothing is shared between pairs.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "nemcli/internal/errors"
	"nemcli/internal/files"
	"nemcli/internal/nem12"
)

// DefaultPairTimeout bounds a single comparison's wall-clock time.
const DefaultPairTimeout = 300 * time.Second

// Runner executes comparison batches.
type Runner struct {
	logger      *slog.Logger
	pairTimeout time.Duration
	compareOpts []nem12.CompareOption
}

// PairResult is the outcome of one pair: a comparison result on success, or
// a result holding a single ERROR issue when the pair failed or timed out.
// Err retains the underlying failure for callers that need it.
type PairResult struct {
	RunID  string
	Pair   files.Pair
	Result *nem12.ComparisonResult
	Err    error
}

// Summary aggregates a batch run.
type Summary struct {
	BatchID     string
	TotalPairs  int
	Succeeded   int
	Failed      int
	TotalIssues int
	Elapsed     time.Duration
}

// ExitCode implements the CLI contract: 0 only when every pair succeeded
// and no issues were found.
func (s Summary) ExitCode() int {
	if s.Failed == 0 && s.TotalIssues == 0 {
		return 0
	}
	return 1
}

// NewRunner creates a batch runner. A non-positive timeout falls back to
// the 300-second default.
func NewRunner(logger *slog.Logger, pairTimeout time.Duration, opts ...nem12.CompareOption) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if pairTimeout <= 0 {
		pairTimeout = DefaultPairTimeout
	}
	return &Runner{logger: logger, pairTimeout: pairTimeout, compareOpts: opts}
}

// Run compares each pair in order and returns per-pair results plus the
// batch summary. The passed context cancels the whole batch; each pair
// additionally gets its own deadline.
func (r *Runner) Run(ctx context.Context, pairs []files.Pair) ([]PairResult, Summary) {
	start := time.Now()
	summary := Summary{
		BatchID:    uuid.NewString(),
		TotalPairs: len(pairs),
	}
	results := make([]PairResult, 0, len(pairs))

	for i, pair := range pairs {
		runID := fmt.Sprintf("RUN_%03d", i+1)
		r.logger.Info("comparing pair",
			slog.String("run_id", runID),
			slog.String("before", pair.Before.Name),
			slog.String("after", pair.After.Name),
			slog.Int("index", i+1),
			slog.Int("total", len(pairs)))

		res := r.runPair(ctx, runID, pair)
		if res.Err != nil {
			summary.Failed++
			r.logger.Error("pair failed",
				slog.String("run_id", runID),
				slog.Any("error", res.Err))
		} else {
			summary.Succeeded++
			r.logger.Info("pair completed",
				slog.String("run_id", runID),
				slog.Int("issues", len(res.Result.Issues)))
		}
		summary.TotalIssues += len(res.Result.Issues)
		results = append(results, res)
	}

	summary.Elapsed = time.Since(start)
	return results, summary
}

// runPair executes one comparison under its own deadline. The comparison
// itself has no suspension points, so the deadline is enforced by racing it
// against the context; an abandoned comparison finishes in the background
// and its output is dropped.
func (r *Runner) runPair(ctx context.Context, runID string, pair files.Pair) PairResult {
	pairCtx, cancel := context.WithTimeout(ctx, r.pairTimeout)
	defer cancel()

	type outcome struct {
		result *nem12.ComparisonResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{err: apperrors.ParseFailure("compare", fmt.Errorf("%v", rec))}
			}
		}()
		res, err := nem12.CompareFiles(pair.Before.Path, pair.After.Path, r.compareOpts...)
		done <- outcome{result: res, err: err}
	}()

	var res PairResult
	res.RunID = runID
	res.Pair = pair
	select {
	case out := <-done:
		res.Result, res.Err = out.result, out.err
	case <-pairCtx.Done():
		res.Err = fmt.Errorf("comparison timed out after %s: %w", r.pairTimeout, pairCtx.Err())
	}

	if res.Err != nil {
		res.Result = errorResult(pair, res.Err)
	}
	return res
}

// errorResult converts a per-pair failure into a single ERROR issue row so
// batch output keeps partial-failure information as data.
func errorResult(pair files.Pair, err error) *nem12.ComparisonResult {
	issue := nem12.Issue{
		Type:    nem12.IssueError,
		Details: err.Error(),
	}
	return nem12.BuildResult([]nem12.Issue{issue}, pair.Before.Name, pair.After.Name)
}
