package nem12

// NEM12 record type tags, taken from cell 0 of each row.
const (
	RecordHeader   = "100"
	RecordMeter    = "200"
	RecordInterval = "300"
	RecordFooter   = "900"
)

// Fallback constants for graceful degradation on malformed 200 records.
const (
	DefaultIntervalLength = 30
	UnknownChannel        = "UNKNOWN_CHANNEL"
)

// IntervalKey uniquely identifies one interval reading. It is a plain
// comparable struct so map lookups use value equality; do not add slice or
// pointer fields.
type IntervalKey struct {
	NMI     string
	Channel string
	Date    string
	Index   int
}

// IntervalReading is the stored value for one interval plus its source
// location. Row is the 1-based physical line number in the input file and is
// used only for diagnostic location hints.
type IntervalReading struct {
	Value string
	Row   int
}

// Dataset is the parsed form of one NEM12 file. Built once per file and
// treated as immutable afterwards.
type Dataset struct {
	FileName        string
	FirstRecordType string
	Has200          bool
	Has900          bool
	Intervals       map[IntervalKey]IntervalReading
}

// IssueType tags one discrepancy category.
type IssueType string

const (
	IssueStructure     IssueType = "STRUCTURE"
	IssueMissing       IssueType = "MISSING"
	IssueExtra         IssueType = "EXTRA"
	IssueValueMismatch IssueType = "VALUE_MISMATCH"
	// IssueError is synthesized by the batch runner for a pair that failed
	// or timed out; the diff engine never emits it.
	IssueError IssueType = "ERROR"
)

// Issue is one reported discrepancy between the before and after files.
// Field names follow the report column schema.
type Issue struct {
	Sr          int       `json:"sr"`
	Type        IssueType `json:"issue_type"`
	NMI         string    `json:"nmi"`
	RecordType  string    `json:"record_type"`
	Channel     string    `json:"channel"`
	Date        string    `json:"date"`
	FieldName   string    `json:"field_name"`
	Location    string    `json:"after_cell_location"`
	BeforeValue string    `json:"before_value"`
	AfterValue  string    `json:"after_value"`
	Details     string    `json:"details"`
}

// Metadata describes one comparison run.
type Metadata struct {
	ReportName     string `json:"report_name"`
	ReportDate     string `json:"report_date"`
	ReportTime     string `json:"report_time"`
	BeforeFileName string `json:"before_file"`
	AfterFileName  string `json:"after_file"`
}

// ComparisonResult is the final output of one before/after comparison:
// ordered issues with stable Sr numbering plus run metadata.
type ComparisonResult struct {
	Metadata Metadata `json:"metadata"`
	Issues   []Issue  `json:"issues"`
}

// Clean reports whether the comparison found no discrepancies.
func (r *ComparisonResult) Clean() bool {
	return len(r.Issues) == 0
}
