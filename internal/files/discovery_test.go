package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("100,NEM12\n"), 0o644))
	}
}

func TestFindReportFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.csv", "a.txt", "c.dat", "notes.md", "image.png")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	files, err := FindReportFiles(dir)
	require.NoError(t, err)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	// Report extensions only, directories skipped, sorted by name.
	assert.Equal(t, []string{"a.txt", "b.csv", "c.dat"}, names)
}

func TestFindReportFilesMissingDir(t *testing.T) {
	_, err := FindReportFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestMatchPairsExactNames(t *testing.T) {
	before := []FileInfo{{Name: "report_a.csv"}, {Name: "report_b.csv"}}
	after := []FileInfo{{Name: "report_b.csv"}, {Name: "report_a.csv"}}

	pairs, ub, ua := MatchPairs(before, after)
	require.Len(t, pairs, 2)
	assert.Empty(t, ub)
	assert.Empty(t, ua)
	assert.Equal(t, "report_a.csv", pairs[0].Before.Name)
	assert.Equal(t, "report_a.csv", pairs[0].After.Name)
}

func TestMatchPairsNormalizedNames(t *testing.T) {
	before := []FileInfo{{Name: "DailyMeter_before_20250101_083000.csv"}}
	after := []FileInfo{{Name: "dailymeter_after_20250102_090000.csv"}}

	pairs, ub, ua := MatchPairs(before, after)
	require.Len(t, pairs, 1)
	assert.Empty(t, ub)
	assert.Empty(t, ua)
	assert.Equal(t, "DailyMeter_before_20250101_083000.csv", pairs[0].Before.Name)
	assert.Equal(t, "dailymeter_after_20250102_090000.csv", pairs[0].After.Name)
}

func TestMatchPairsUnmatched(t *testing.T) {
	before := []FileInfo{{Name: "alpha.csv"}, {Name: "beta_before.csv"}}
	after := []FileInfo{{Name: "alpha.csv"}, {Name: "gamma_after.csv"}}

	pairs, ub, ua := MatchPairs(before, after)
	require.Len(t, pairs, 1)
	require.Len(t, ub, 1)
	require.Len(t, ua, 1)
	assert.Equal(t, "beta_before.csv", ub[0].Name)
	assert.Equal(t, "gamma_after.csv", ua[0].Name)
}

func TestNormalizeReportName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"DailyMeter_before_20250101_083000.csv", "dailymeter"},
		{"dailymeter_after_20250102.csv", "dailymeter"},
		{"NEM12-Report.txt", "nem12report"},
		// Short digit runs survive; they are part of the report name.
		{"site42_before.csv", "site42"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeReportName(tt.in), "input %q", tt.in)
	}
}
