// Package audit emits the YAML run-properties document written alongside
// each load file. The document records the parameters that shaped the
// output plus the full chaos anomaly trail, so downstream parser tests can
// assert against exactly what was generated.
package audit

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/haybale/chaff/types"
)

// Chaos is the corruption section of the document, present only when chaos
// mode was active.
type Chaos struct {
	Amount       string          `yaml:"amount"`
	EnabledTypes []string        `yaml:"enabled_types"`
	Seed         *int64          `yaml:"seed,omitempty"`
	AnomalyCount int             `yaml:"anomaly_count"`
	Anomalies    []types.Anomaly `yaml:"anomalies"`
}

// Document is the run-properties record for one load file.
type Document struct {
	RunID           string             `yaml:"run_id"`
	GeneratedAt     time.Time          `yaml:"generated_at"`
	Format          types.OutputFormat `yaml:"format"`
	FileType        types.FileType     `yaml:"file_type"`
	Distribution    types.Distribution `yaml:"distribution"`
	Encoding        types.Encoding     `yaml:"encoding"`
	LineEnding      types.LineEnding   `yaml:"line_ending"`
	ColumnDelimiter string             `yaml:"column_delimiter,omitempty"`
	QuoteDelimiter  string             `yaml:"quote_delimiter,omitempty"`
	RecordCount     int64              `yaml:"record_count"`
	LineCount       int64              `yaml:"line_count"`
	Chaos           *Chaos             `yaml:"chaos,omitempty"`
}

// NewDocument seeds a document from the request for one output format.
// Counts and the chaos section are filled in by the caller after the load
// file is written.
func NewDocument(req *types.GenerationRequest, format types.OutputFormat) Document {
	return Document{
		RunID:           req.RunID,
		GeneratedAt:     time.Now().UTC(),
		Format:          format,
		FileType:        req.FileType,
		Distribution:    req.Distribution,
		Encoding:        req.Encoding,
		LineEnding:      req.LineEnding,
		ColumnDelimiter: req.ColumnDelimiter,
		QuoteDelimiter:  req.QuoteDelimiter,
	}
}

// Write serializes the document as YAML. The audit file itself is always
// UTF-8 regardless of the load file's encoding.
func Write(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode audit document: %w", err)
	}
	return enc.Close()
}
