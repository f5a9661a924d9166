package nem12

import (
	"strings"
)

// Candidate delimiters, checked in order; comma wins ties.
var delimiters = []rune{',', '|', ';', '\t'}

// Row is one non-blank input line split into trimmed cells. Line is the
// 1-based physical line number in the original text.
type Row struct {
	Cells []string
	Line  int
}

// DetectDelimiter picks the delimiter for a file by counting candidate
// occurrences in the first non-blank line. The highest count wins; ties
// resolve in candidate order, so comma is the default.
func DetectDelimiter(text string) rune {
	line := firstNonBlankLine(text)
	best := delimiters[0]
	bestCount := strings.Count(line, string(best))
	for _, d := range delimiters[1:] {
		if c := strings.Count(line, string(d)); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}

func firstNonBlankLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}

// Tokenize splits raw file text into rows of cells using a single
// auto-detected delimiter. Blank lines are dropped but still advance the
// line counter, so Row.Line always matches the source file. Malformed rows
// are not an error here; ragged cell counts are handled by the classifier.
func Tokenize(text string) []Row {
	delim := DetectDelimiter(text)
	lines := strings.Split(text, "\n")
	rows := make([]Row, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		raw := strings.Split(line, string(delim))
		cells := make([]string, len(raw))
		for j, c := range raw {
			cells[j] = normalizeCell(c)
		}
		rows = append(rows, Row{Cells: cells, Line: i + 1})
	}
	return rows
}

// normalizeCell trims surrounding whitespace and strips one pair of
// matching single or double quotes wrapping the whole cell.
func normalizeCell(cell string) string {
	s := strings.TrimSpace(cell)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return s
}

// cellAt returns the trimmed cell at idx, or "" when the row is too short.
// Cells are already normalized by Tokenize; this only guards the bounds.
func cellAt(row Row, idx int) string {
	if idx >= 0 && idx < len(row.Cells) {
		return row.Cells[idx]
	}
	return ""
}
