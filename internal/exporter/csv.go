package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"nemcli/internal/nem12"
)

// Writer exports comparison results into an output directory.
type Writer struct {
	outDir string
	logger *slog.Logger
}

// NewWriter creates a result writer rooted at outDir.
func NewWriter(outDir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{outDir: outDir, logger: logger}
}

// WriteCSV writes the comparison report in the canonical CSV layout:
// a key,value metadata block, one blank separator row, the detail header
// (with the after-file name interpolated into the location column), then
// one row per issue. encoding/csv quote-escapes free-text fields.
func (w *Writer) WriteCSV(result *nem12.ComparisonResult, fileName string) (string, error) {
	fullPath := filepath.Join(w.outDir, fileName)
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create result file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	for _, row := range metadataRows(result.Metadata) {
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("failed to write metadata row: %w", err)
		}
	}
	if err := cw.Write([]string{}); err != nil {
		return "", fmt.Errorf("failed to write separator row: %w", err)
	}
	if err := cw.Write(headerRow(result.Metadata.AfterFileName)); err != nil {
		return "", fmt.Errorf("failed to write header row: %w", err)
	}
	for _, issue := range result.Issues {
		if err := cw.Write(issueRow(issue)); err != nil {
			return "", fmt.Errorf("failed to write issue row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to flush result file: %w", err)
	}

	w.logger.Info("wrote comparison CSV",
		slog.String("path", fullPath),
		slog.Int("issues", len(result.Issues)))
	return fullPath, nil
}

// metadataRows renders the report metadata block.
func metadataRows(m nem12.Metadata) [][]string {
	return [][]string{
		{"Report_Name", m.ReportName},
		{"Report_Date", m.ReportDate},
		{"Report_Time", m.ReportTime},
		{"Before_Report", m.BeforeFileName},
		{"After_Report", m.AfterFileName},
	}
}

// headerRow renders the detail header, naming the after file in the
// location column.
func headerRow(afterFileName string) []string {
	return []string{
		"Sr",
		"issue_type",
		"nmi",
		"record_type",
		"channel",
		"date",
		"field_name",
		fmt.Sprintf("after_cell_location (%s)", afterFileName),
		"before_value",
		"after_value",
		"details",
	}
}

func issueRow(i nem12.Issue) []string {
	return []string{
		strconv.Itoa(i.Sr),
		string(i.Type),
		i.NMI,
		i.RecordType,
		i.Channel,
		i.Date,
		i.FieldName,
		i.Location,
		i.BeforeValue,
		i.AfterValue,
		i.Details,
	}
}
