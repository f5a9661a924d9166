// Package exporter writes comparison results to disk: the canonical CSV
// report layout, an XLSX variant of the same layout, and a machine-readable
// JSON summary.
package exporter
