package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nemcli/internal/files"
	"nemcli/internal/nem12"
)

func writeNEM12(t *testing.T, dir, name string, values []string) files.FileInfo {
	t.Helper()
	rows := []string{
		"100,NEM12,200506081149,MDA,RETAILER",
		"200,ABC123456,E1E2,1,E1,N1,01009,kWh,30,20250101",
		"300,20250101," + strings.Join(values, ",") + ",A,,,20250101121300",
		"900",
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(rows, "\n")+"\n"), 0o644))
	info, err := os.Stat(path)
	require.NoError(t, err)
	return files.FileInfo{Path: path, Name: name, Size: info.Size(), ModTime: info.ModTime()}
}

func values(v string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestRunnerCleanPair(t *testing.T) {
	dir := t.TempDir()
	before := writeNEM12(t, dir, "before.csv", values("1.0", 48))
	after := writeNEM12(t, dir, "after.csv", values("1.0", 48))

	runner := NewRunner(nil, 0)
	results, summary := runner.Run(context.Background(), []files.Pair{{Before: before, After: after}})

	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Empty(t, results[0].Result.Issues)
	assert.Equal(t, "RUN_001", results[0].RunID)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 0, summary.ExitCode())
	assert.NotEmpty(t, summary.BatchID)
}

func TestRunnerFindsIssues(t *testing.T) {
	dir := t.TempDir()
	beforeValues := values("1.0", 48)
	afterValues := values("1.0", 48)
	afterValues[3] = "2.0"
	before := writeNEM12(t, dir, "before.csv", beforeValues)
	after := writeNEM12(t, dir, "after.csv", afterValues)

	runner := NewRunner(nil, 0)
	results, summary := runner.Run(context.Background(), []files.Pair{{Before: before, After: after}})

	require.Len(t, results, 1)
	assert.Equal(t, 1, summary.TotalIssues)
	assert.Equal(t, nem12.IssueValueMismatch, results[0].Result.Issues[0].Type)
	assert.Equal(t, 1, summary.ExitCode())
}

func TestRunnerIsolatesFailedPair(t *testing.T) {
	dir := t.TempDir()
	good := writeNEM12(t, dir, "good.csv", values("1.0", 48))
	missing := files.FileInfo{Path: filepath.Join(dir, "missing.csv"), Name: "missing.csv"}

	pairs := []files.Pair{
		{Before: missing, After: good}, // fails: before side unreadable
		{Before: good, After: good},    // still runs
	}
	runner := NewRunner(nil, 0)
	results, summary := runner.Run(context.Background(), pairs)

	require.Len(t, results, 2)

	require.Error(t, results[0].Err)
	require.NotNil(t, results[0].Result)
	require.Len(t, results[0].Result.Issues, 1)
	errIssue := results[0].Result.Issues[0]
	assert.Equal(t, nem12.IssueError, errIssue.Type)
	assert.NotEmpty(t, errIssue.Details)

	require.NoError(t, results[1].Err)
	assert.Empty(t, results[1].Result.Issues)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.ExitCode())
}

func TestRunnerSequentialOrder(t *testing.T) {
	dir := t.TempDir()
	var pairs []files.Pair
	for i := 0; i < 3; i++ {
		f := writeNEM12(t, dir, fmt.Sprintf("pair%d.csv", i), values("1.0", 4))
		pairs = append(pairs, files.Pair{Before: f, After: f})
	}

	runner := NewRunner(nil, 0)
	results, _ := runner.Run(context.Background(), pairs)
	require.Len(t, results, 3)
	for i, res := range results {
		assert.Equal(t, fmt.Sprintf("RUN_%03d", i+1), res.RunID)
		assert.Equal(t, fmt.Sprintf("pair%d.csv", i), res.Pair.Before.Name)
	}
}

func TestSummaryExitCode(t *testing.T) {
	assert.Equal(t, 0, Summary{}.ExitCode())
	assert.Equal(t, 1, Summary{TotalIssues: 1}.ExitCode())
	assert.Equal(t, 1, Summary{Failed: 1}.ExitCode())
}
