package nem12

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"nemcli/internal/errors"
)

// Quality flags a 300 record may carry in its trailing column.
var qualityFlags = map[string]bool{
	"A": true, "V": true, "E": true, "F": true, "N": true,
	"S": true, "R": true, "C": true, "D": true,
}

// meterContext is the mutable state carried across rows while scanning:
// the current 200 record's NMI, channel, and interval length, consumed by
// subsequent 300 records.
type meterContext struct {
	nmi         string
	channel     string
	intervalLen int
}

// ParseFile reads and parses one NEM12 file from disk. Unreadable and
// empty files are the only hard errors; structurally odd rows degrade to
// documented defaults instead of failing the parse.
func ParseFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Unreadable(path, err)
	}
	content := string(data)
	if strings.TrimSpace(content) == "" {
		return nil, errors.Empty(path)
	}
	return Parse(content, filepath.Base(path)), nil
}

// Parse builds a Dataset from raw file text. It walks the tokenized rows
// with a meter-context state machine: 200 records set the context, 300
// records consume it, everything else only contributes to the structural
// booleans.
func Parse(content, fileName string) *Dataset {
	ds := &Dataset{
		FileName:  fileName,
		Intervals: make(map[IntervalKey]IntervalReading),
	}
	ctx := meterContext{intervalLen: DefaultIntervalLength}

	rows := Tokenize(content)
	for _, row := range rows {
		rec := cellAt(row, 0)
		if ds.FirstRecordType == "" {
			ds.FirstRecordType = rec
		}
		switch rec {
		case RecordHeader:
			// header carries file metadata only
		case RecordMeter:
			ds.Has200 = true
			ctx = parseMeterRecord(row)
		case RecordInterval:
			parseIntervalRecord(ds, ctx, row)
		case RecordFooter:
			ds.Has900 = true
		default:
			// 400/500 and unknown records carry no interval data
		}
	}

	slog.Debug("parsed NEM12 file",
		slog.String("file", fileName),
		slog.Int("rows", len(rows)),
		slog.Int("intervals", len(ds.Intervals)))
	return ds
}

// parseMeterRecord extracts the meter context from a 200 record.
// NMI is cell 1; channel is cell 4, then cell 2, then UNKNOWN_CHANNEL;
// interval length is cell 8, then cell 7, then the 30-minute default.
func parseMeterRecord(row Row) meterContext {
	return meterContext{
		nmi:         cellAt(row, 1),
		channel:     parseChannel(row),
		intervalLen: parseIntervalLength(row),
	}
}

func parseChannel(row Row) string {
	if ch := cellAt(row, 4); ch != "" {
		return ch
	}
	if ch := cellAt(row, 2); ch != "" {
		return ch
	}
	return UnknownChannel
}

func parseIntervalLength(row Row) int {
	for _, idx := range []int{8, 7} {
		if n, err := strconv.Atoi(cellAt(row, idx)); err == nil && n > 0 {
			return n
		}
	}
	return DefaultIntervalLength
}

// parseIntervalRecord extracts interval values from a 300 record and merges
// them into the dataset under the current meter context. Rows without a
// context or without a date are skipped without error.
func parseIntervalRecord(ds *Dataset, ctx meterContext, row Row) {
	if ctx.nmi == "" || ctx.channel == "" {
		return
	}
	date := cellAt(row, 1)
	if date == "" {
		return
	}

	end := 2 + expectedIntervals(ctx.intervalLen)
	if qIdx := findQualityFlagIndex(row); qIdx > 2 {
		end = qIdx
	}
	if end > len(row.Cells) {
		end = len(row.Cells)
	}

	// Keys are canonicalized to upper case so key equality is
	// case-insensitive across the two files.
	nmi := strings.ToUpper(ctx.nmi)
	channel := strings.ToUpper(ctx.channel)
	for i := 2; i < end; i++ {
		key := IntervalKey{NMI: nmi, Channel: channel, Date: date, Index: i - 2}
		// First non-empty value wins; later duplicates only fill gaps.
		if existing, ok := ds.Intervals[key]; ok && existing.Value != "" {
			continue
		}
		ds.Intervals[key] = IntervalReading{Value: row.Cells[i], Row: row.Line}
	}
}

// findQualityFlagIndex locates the quality-flag column of a 300 record by
// scanning from the end toward index 2 for a single-character cell drawn
// from the NEM12 flag set. This is a heuristic, not a schema guarantee: it
// is kept isolated here so it can be replaced with a schema-driven column
// count if the 200 record's interval-count field proves reliable. Returns
// -1 when no flag is found.
func findQualityFlagIndex(row Row) int {
	for i := len(row.Cells) - 4; i > 1; i-- {
		v := row.Cells[i]
		if len(v) == 1 && qualityFlags[v] {
			return i
		}
	}
	return -1
}

// expectedIntervals is the fallback value count when no quality flag marks
// the end of the interval block: 48 for 30-minute data, otherwise a full
// day divided by the interval length, never less than one.
func expectedIntervals(intervalLen int) int {
	if intervalLen == DefaultIntervalLength {
		return 48
	}
	if intervalLen < 1 {
		intervalLen = 1
	}
	n := (24 * 60) / intervalLen
	if n < 1 {
		n = 1
	}
	return n
}
