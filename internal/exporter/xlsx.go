package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"nemcli/internal/nem12"
)

const resultSheetName = "Comparison"

// WriteXLSX writes the comparison report as a spreadsheet with the same
// layout as the CSV: metadata block, blank row, header, issue rows.
func (w *Writer) WriteXLSX(result *nem12.ComparisonResult, fileName string) (string, error) {
	fullPath := filepath.Join(w.outDir, fileName)
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName(f.GetSheetName(0), resultSheetName)

	rowNum := 1
	writeRow := func(cells []string) error {
		for col, val := range cells {
			name, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(resultSheetName, name, val); err != nil {
				return err
			}
		}
		rowNum++
		return nil
	}

	for _, row := range metadataRows(result.Metadata) {
		if err := writeRow(row); err != nil {
			return "", fmt.Errorf("failed to write metadata row: %w", err)
		}
	}
	rowNum++ // blank separator row
	if err := writeRow(headerRow(result.Metadata.AfterFileName)); err != nil {
		return "", fmt.Errorf("failed to write header row: %w", err)
	}
	for _, issue := range result.Issues {
		if err := writeRow(issueRow(issue)); err != nil {
			return "", fmt.Errorf("failed to write issue row: %w", err)
		}
	}

	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	w.logger.Info("wrote comparison workbook",
		slog.String("path", fullPath),
		slog.Int("issues", len(result.Issues)))
	return fullPath, nil
}
