// Package files discovers NEM12 report files and pairs the before and
// after sides by filename heuristics.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
)

// Report file extensions the discovery accepts.
var reportExtensions = map[string]bool{
	".csv": true,
	".txt": true,
	".dat": true,
}

// FileInfo represents information about a discovered report file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Pair is one before/after file pairing produced by MatchPairs.
type Pair struct {
	Before FileInfo
	After  FileInfo
}

// FindReportFiles lists NEM12 report files (.csv, .txt, .dat) in dir,
// sorted by name for deterministic pairing.
func FindReportFiles(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !reportExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// MatchPairs pairs before and after files. Exact name matches pair first;
// remaining files pair when their normalized names agree. Files on either
// side with no counterpart are returned as unmatched.
func MatchPairs(before, after []FileInfo) (pairs []Pair, unmatchedBefore, unmatchedAfter []FileInfo) {
	used := make(map[int]bool, len(after))

	// Pass 1: exact names.
	byName := make(map[string]int, len(after))
	for i, f := range after {
		byName[f.Name] = i
	}
	var remaining []FileInfo
	for _, b := range before {
		if i, ok := byName[b.Name]; ok && !used[i] {
			pairs = append(pairs, Pair{Before: b, After: after[i]})
			used[i] = true
			continue
		}
		remaining = append(remaining, b)
	}

	// Pass 2: normalized names.
	byNormalized := make(map[string]int, len(after))
	for i, f := range after {
		if used[i] {
			continue
		}
		key := NormalizeReportName(f.Name)
		if _, dup := byNormalized[key]; !dup {
			byNormalized[key] = i
		}
	}
	for _, b := range remaining {
		if i, ok := byNormalized[NormalizeReportName(b.Name)]; ok && !used[i] {
			pairs = append(pairs, Pair{Before: b, After: after[i]})
			used[i] = true
			delete(byNormalized, NormalizeReportName(b.Name))
			continue
		}
		unmatchedBefore = append(unmatchedBefore, b)
	}
	for i, f := range after {
		if !used[i] {
			unmatchedAfter = append(unmatchedAfter, f)
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Before.Name < pairs[j].Before.Name
	})
	return pairs, unmatchedBefore, unmatchedAfter
}

// NormalizeReportName reduces a report filename to its pairing key:
// lower-cased, extension dropped, before/after role markers removed, and
// timestamp-like digit runs (6+ digits) stripped. Two files naming the same
// report on either side normalize to the same key.
func NormalizeReportName(name string) string {
	s := strings.ToLower(name)
	s = strings.TrimSuffix(s, filepath.Ext(s))
	for _, marker := range []string{"before", "after"} {
		s = strings.ReplaceAll(s, marker, "")
	}
	s = stripLongDigitRuns(s, 6)
	// Collapse separator debris left by the removals.
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripLongDigitRuns removes runs of minRun or more consecutive digits.
func stripLongDigitRuns(s string, minRun int) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); {
		if unicode.IsDigit(runes[i]) {
			j := i
			for j < len(runes) && unicode.IsDigit(runes[j]) {
				j++
			}
			if j-i < minRun {
				b.WriteString(string(runes[i:j]))
			}
			i = j
			continue
		}
		b.WriteRune(runes[i])
		i++
	}
	return b.String()
}
