package types

// Anomaly is one append-only audit record describing a deliberately
// injected load-file defect. One instance is recorded per mutation.
type Anomaly struct {
	// LineNumber is the 1-based target line, or "Boundary N-M" for bytes
	// injected between two lines.
	LineNumber string `yaml:"line_number"`
	// RecordID is the document ID on the affected line, or "N/A".
	RecordID string `yaml:"record_id"`
	// Column is the affected column index, or "N/A" when the defect is not
	// column-scoped.
	Column string `yaml:"column"`
	// ErrorType is the anomaly catalog tag.
	ErrorType string `yaml:"error_type"`
	// Description is a human-readable account of the mutation.
	Description string `yaml:"description"`
}
