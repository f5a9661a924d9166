package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"nemcli/internal/nem12"
)

// RunSummary is the machine-readable digest of a batch run.
type RunSummary struct {
	BatchID      string         `json:"batch_id"`
	TotalPairs   int            `json:"total_pairs"`
	Succeeded    int            `json:"succeeded"`
	Failed       int            `json:"failed"`
	TotalIssues  int            `json:"total_issues"`
	IssuesByType map[string]int `json:"issues_by_type"`
	ElapsedMs    int64          `json:"elapsed_ms"`
}

// CountIssuesByType tallies issues per category across results.
func CountIssuesByType(results []*nem12.ComparisonResult) map[string]int {
	counts := make(map[string]int)
	for _, r := range results {
		for _, issue := range r.Issues {
			counts[string(issue.Type)]++
		}
	}
	return counts
}

// WriteSummaryJSON writes the run digest next to the CSV report.
func (w *Writer) WriteSummaryJSON(summary RunSummary, fileName string) (string, error) {
	fullPath := filepath.Join(w.outDir, fileName)
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}
	w.logger.Info("wrote run summary", slog.String("path", fullPath))
	return fullPath, nil
}
