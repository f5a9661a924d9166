package nem12

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// DefaultTolerance is the numeric tolerance applied when tolerance-based
// value comparison is enabled.
const DefaultTolerance = 0.001

// compareConfig controls how interval values are matched.
type compareConfig struct {
	numeric   bool
	tolerance float64
}

// CompareOption customises the diff engine.
type CompareOption func(*compareConfig)

// WithNumericTolerance switches value matching from exact string equality to
// numeric comparison within tol. Values that do not parse as numbers fall
// back to exact string comparison.
func WithNumericTolerance(tol float64) CompareOption {
	return func(c *compareConfig) {
		c.numeric = true
		c.tolerance = tol
	}
}

// Compare diffs two parsed datasets and returns the unnumbered issue list in
// deterministic order: structural checks (before side first), then missing,
// extra, and value-mismatch issues each sorted by key. Sr assignment and
// metadata wrapping happen in BuildResult.
func Compare(before, after *Dataset, opts ...CompareOption) []Issue {
	cfg := compareConfig{tolerance: DefaultTolerance}
	for _, opt := range opts {
		opt(&cfg)
	}

	var issues []Issue
	issues = append(issues, structureIssues(before, after)...)

	var missing, extra, common []IntervalKey
	for k := range before.Intervals {
		if _, ok := after.Intervals[k]; ok {
			common = append(common, k)
		} else {
			missing = append(missing, k)
		}
	}
	for k := range after.Intervals {
		if _, ok := before.Intervals[k]; !ok {
			extra = append(extra, k)
		}
	}
	sortKeys(missing)
	sortKeys(extra)
	sortKeys(common)

	for _, k := range missing {
		b := before.Intervals[k]
		issues = append(issues, Issue{
			Type:        IssueMissing,
			NMI:         k.NMI,
			RecordType:  RecordInterval,
			Channel:     k.Channel,
			Date:        k.Date,
			Location:    locationHint(b.Row, k.Index),
			BeforeValue: b.Value,
			Details: fmt.Sprintf(
				"Interval present in BEFORE file but missing in AFTER file for NMI %s, channel %s, date %s, interval %d.",
				k.NMI, k.Channel, k.Date, k.Index),
		})
	}
	for _, k := range extra {
		a := after.Intervals[k]
		issues = append(issues, Issue{
			Type:       IssueExtra,
			NMI:        k.NMI,
			RecordType: RecordInterval,
			Channel:    k.Channel,
			Date:       k.Date,
			Location:   locationHint(a.Row, k.Index),
			AfterValue: a.Value,
			Details: fmt.Sprintf(
				"Extra interval present only in AFTER file (not in BEFORE file) for NMI %s, channel %s, date %s, interval %d.",
				k.NMI, k.Channel, k.Date, k.Index),
		})
	}
	for _, k := range common {
		b := before.Intervals[k]
		a := after.Intervals[k]
		if valuesMatch(cfg, b.Value, a.Value) {
			continue
		}
		issues = append(issues, Issue{
			Type:        IssueValueMismatch,
			NMI:         k.NMI,
			RecordType:  RecordInterval,
			Channel:     k.Channel,
			Date:        k.Date,
			FieldName:   "IntervalValue",
			Location:    locationHint(a.Row, k.Index),
			BeforeValue: b.Value,
			AfterValue:  a.Value,
			Details: fmt.Sprintf(
				"Value mismatch between BEFORE and AFTER files (%s=%s vs %s=%s).",
				before.FileName, b.Value, after.FileName, a.Value),
		})
	}
	return issues
}

// structureIssues validates each side independently: first record must be a
// 100 header, and a well-formed file carries at least one 200 record and a
// 900 footer. Zero to six issues may result.
func structureIssues(before, after *Dataset) []Issue {
	var issues []Issue
	check := func(side string, ds *Dataset) {
		if ds.FirstRecordType != RecordHeader {
			issues = append(issues, Issue{
				Type:    IssueStructure,
				Details: fmt.Sprintf("%s first record is %s", side, ds.FirstRecordType),
			})
		}
		if !ds.Has200 {
			issues = append(issues, Issue{
				Type:    IssueStructure,
				Details: fmt.Sprintf("%s missing any 200 record", side),
			})
		}
		if !ds.Has900 {
			issues = append(issues, Issue{
				Type:    IssueStructure,
				Details: fmt.Sprintf("%s missing 900 record", side),
			})
		}
	}
	check("BEFORE", before)
	check("AFTER", after)
	return issues
}

// valuesMatch applies the configured equality: exact string comparison by
// default, numeric-within-tolerance when enabled and both values parse.
func valuesMatch(cfg compareConfig, b, a string) bool {
	if cfg.numeric {
		bn, berr := strconv.ParseFloat(b, 64)
		an, aerr := strconv.ParseFloat(a, 64)
		if berr == nil && aerr == nil {
			return math.Abs(bn-an) <= cfg.tolerance
		}
	}
	return b == a
}

func locationHint(row, intervalIdx int) string {
	return fmt.Sprintf("row %d, interval %d", row, intervalIdx)
}

func sortKeys(keys []IntervalKey) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.NMI != b.NMI {
			return a.NMI < b.NMI
		}
		if a.Channel != b.Channel {
			return a.Channel < b.Channel
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Index < b.Index
	})
}
