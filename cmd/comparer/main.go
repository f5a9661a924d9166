// Command comparer runs NEM12 before/after comparisons.
//
// With -before-file and -after-file it compares a single pair. Without
// them it discovers files in the configured before/after directories,
// pairs them by filename, and runs the batch sequentially. Exit code is 0
// when every pair succeeded with no issues, 1 otherwise.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"nemcli/internal/batch"
	"nemcli/internal/config"
	"nemcli/internal/exporter"
	"nemcli/internal/files"
	"nemcli/internal/infrastructure"
	"nemcli/internal/nem12"
)

func main() {
	beforeFile := flag.String("before-file", "", "compare a single pair: BEFORE file path")
	afterFile := flag.String("after-file", "", "compare a single pair: AFTER file path")
	beforeDir := flag.String("before-dir", "", "directory of BEFORE files (defaults from config)")
	afterDir := flag.String("after-dir", "", "directory of AFTER files (defaults from config)")
	outDir := flag.String("out", "", "results directory (defaults from config)")
	tolerance := flag.Float64("tolerance", -1, "numeric tolerance for value comparison; negative means exact string equality")
	xlsx := flag.Bool("xlsx", false, "also write the report as a spreadsheet")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Warning: failed to load config, using defaults: %v\n", err)
		cfg = &config.Config{}
	}
	if *beforeDir == "" {
		*beforeDir = cfg.Paths.BeforeDir
	}
	if *afterDir == "" {
		*afterDir = cfg.Paths.AfterDir
	}
	if *outDir == "" {
		*outDir = cfg.Paths.ResultsDir
	}

	logCfg := cfg.Logging
	if logCfg.Level == "" {
		logCfg = config.LoggingConfig{Level: "info", Format: "json", Output: "console"}
	}
	logger, err := infrastructure.InitializeLogger(logCfg)
	if err != nil {
		fmt.Printf("Warning: failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	var compareOpts []nem12.CompareOption
	switch {
	case *tolerance >= 0:
		compareOpts = append(compareOpts, nem12.WithNumericTolerance(*tolerance))
	case cfg.Compare.NumericTolerance:
		compareOpts = append(compareOpts, nem12.WithNumericTolerance(cfg.Compare.Tolerance))
	}

	pairs, err := resolvePairs(logger, *beforeFile, *afterFile, *beforeDir, *afterDir)
	if err != nil {
		logger.Error("failed to resolve file pairs", slog.Any("error", err))
		os.Exit(1)
	}
	if len(pairs) == 0 {
		logger.Error("no file pairs to compare",
			slog.String("before_dir", *beforeDir),
			slog.String("after_dir", *afterDir))
		os.Exit(1)
	}

	runner := batch.NewRunner(logger, cfg.Compare.PairTimeout, compareOpts...)
	results, summary := runner.Run(context.Background(), pairs)

	if err := writeReports(logger, *outDir, results, summary, *xlsx); err != nil {
		logger.Error("failed to write reports", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("comparison finished",
		slog.Int("pairs", summary.TotalPairs),
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed),
		slog.Int("issues", summary.TotalIssues),
		slog.Duration("elapsed", summary.Elapsed))
	os.Exit(summary.ExitCode())
}

// resolvePairs builds the work list from either the explicit single pair or
// the configured directories.
func resolvePairs(logger *slog.Logger, beforeFile, afterFile, beforeDir, afterDir string) ([]files.Pair, error) {
	if beforeFile != "" || afterFile != "" {
		if beforeFile == "" || afterFile == "" {
			return nil, fmt.Errorf("-before-file and -after-file must be given together")
		}
		b, err := statFile(beforeFile)
		if err != nil {
			return nil, err
		}
		a, err := statFile(afterFile)
		if err != nil {
			return nil, err
		}
		return []files.Pair{{Before: b, After: a}}, nil
	}

	beforeFiles, err := files.FindReportFiles(beforeDir)
	if err != nil {
		return nil, err
	}
	afterFiles, err := files.FindReportFiles(afterDir)
	if err != nil {
		return nil, err
	}
	pairs, unmatchedBefore, unmatchedAfter := files.MatchPairs(beforeFiles, afterFiles)
	for _, f := range unmatchedBefore {
		logger.Warn("skipping unmatched BEFORE file", slog.String("file", f.Name))
	}
	for _, f := range unmatchedAfter {
		logger.Warn("skipping unmatched AFTER file", slog.String("file", f.Name))
	}
	return pairs, nil
}

func statFile(path string) (files.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return files.FileInfo{}, fmt.Errorf("cannot stat %s: %w", path, err)
	}
	return files.FileInfo{
		Path:    path,
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// writeReports writes one CSV (and optionally XLSX) per pair plus the
// batch summary JSON.
func writeReports(logger *slog.Logger, outDir string, results []batch.PairResult, summary batch.Summary, xlsx bool) error {
	writer := exporter.NewWriter(outDir, logger)
	stamp := time.Now().Format("20060102_150405")

	var comparisonResults []*nem12.ComparisonResult
	for _, res := range results {
		comparisonResults = append(comparisonResults, res.Result)
		base := fmt.Sprintf("comparison_%s_%s", res.RunID, stamp)
		if _, err := writer.WriteCSV(res.Result, base+".csv"); err != nil {
			return err
		}
		if xlsx {
			if _, err := writer.WriteXLSX(res.Result, base+".xlsx"); err != nil {
				return err
			}
		}
	}

	runSummary := exporter.RunSummary{
		BatchID:      summary.BatchID,
		TotalPairs:   summary.TotalPairs,
		Succeeded:    summary.Succeeded,
		Failed:       summary.Failed,
		TotalIssues:  summary.TotalIssues,
		IssuesByType: exporter.CountIssuesByType(comparisonResults),
		ElapsedMs:    summary.Elapsed.Milliseconds(),
	}
	_, err := writer.WriteSummaryJSON(runSummary, fmt.Sprintf("summary_%s.json", stamp))
	return err
}
