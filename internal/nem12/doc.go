// Package nem12 provides parsing and comparison of AEMO NEM12 interval
// metering files. It consolidates tokenizing, record classification, and
// before/after diffing into a cohesive package that handles the complete
// lifecycle from raw file text to an ordered issue report.
//
// # Architecture
//
// The package is organized into four main components:
//
// 1. Tokenizer: splits raw text into rows of cells with delimiter auto-detection
// 2. Parser: classifies records and builds the per-interval dataset
// 3. Diff: computes structural, missing, extra, and value-mismatch issues
// 4. Reporter: orders issues deterministically and attaches run metadata
//
// # Data Flow
//
// The typical flow through this package:
//
//	File text → Tokenize → Rows → Parse → Dataset ×2 → Compare → Issues → BuildResult
//
// # Error Handling
//
// Malformed rows never fail a parse; the classifier degrades to documented
// defaults (30-minute interval length, UNKNOWN_CHANNEL). Hard errors are
// limited to unreadable and empty files, surfaced as wrapped sentinel errors
// from the errors package.
package nem12
