package nem12

import (
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultReportName is used when no report name can be derived from the
// before file's name.
const DefaultReportName = "NEM12 Before vs After Comparison"

// typeRank fixes the emission order contract: structural issues first, then
// missing, extra, and value mismatches. ERROR rows sort last so batch
// failures appear after real findings.
var typeRank = map[IssueType]int{
	IssueStructure:     0,
	IssueMissing:       1,
	IssueExtra:         2,
	IssueValueMismatch: 3,
	IssueError:         4,
}

// OrderIssues sorts issues into the stable report order and assigns Sr
// sequence numbers starting at 1. The sort is stable, so issues of the same
// type and key keep their emission order; re-running the same comparison
// reproduces identical numbering.
func OrderIssues(issues []Issue) []Issue {
	ordered := make([]Issue, len(issues))
	copy(ordered, issues)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if typeRank[a.Type] != typeRank[b.Type] {
			return typeRank[a.Type] < typeRank[b.Type]
		}
		if a.NMI != b.NMI {
			return a.NMI < b.NMI
		}
		if a.Channel != b.Channel {
			return a.Channel < b.Channel
		}
		return a.Date < b.Date
	})
	for i := range ordered {
		ordered[i].Sr = i + 1
	}
	return ordered
}

// BuildResult wraps ordered issues with run metadata into the final
// comparison result.
func BuildResult(issues []Issue, beforeName, afterName string) *ComparisonResult {
	return BuildResultAt(issues, beforeName, afterName, time.Now())
}

// BuildResultAt is BuildResult with an explicit clock, for reproducible
// report metadata in tests.
func BuildResultAt(issues []Issue, beforeName, afterName string, now time.Time) *ComparisonResult {
	return &ComparisonResult{
		Metadata: Metadata{
			ReportName:     ReportNameFromFile(beforeName),
			ReportDate:     now.Format("2006-01-02"),
			ReportTime:     now.Format("15:04:05"),
			BeforeFileName: beforeName,
			AfterFileName:  afterName,
		},
		Issues: OrderIssues(issues),
	}
}

// ReportNameFromFile derives the report name from the before file's name by
// stripping the extension, falling back to the default report title.
func ReportNameFromFile(fileName string) string {
	base := filepath.Base(fileName)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." {
		return DefaultReportName
	}
	return name
}

// CompareFiles is the package-level convenience used by the CLI and HTTP
// surfaces: parse both sides, diff, and build the ordered result.
func CompareFiles(beforePath, afterPath string, opts ...CompareOption) (*ComparisonResult, error) {
	before, err := ParseFile(beforePath)
	if err != nil {
		return nil, err
	}
	after, err := ParseFile(afterPath)
	if err != nil {
		return nil, err
	}
	issues := Compare(before, after, opts...)
	return BuildResult(issues, before.FileName, after.FileName), nil
}
