// Package types defines the value types shared across the generation
// pipeline: the immutable per-run request, work descriptors, generated
// file data, and chaos audit records.
package types

import (
	"errors"
	"fmt"
)

// FileType identifies the kind of document stub produced for each work item.
type FileType string

// File type constants.
const (
	FileTypeText FileType = "text"
	FileTypeEML  FileType = "eml"
	FileTypeTIFF FileType = "tiff"
)

// Extension returns the on-disk extension for the file type.
func (f FileType) Extension() string {
	switch f {
	case FileTypeEML:
		return ".eml"
	case FileTypeTIFF:
		return ".tiff"
	default:
		return ".txt"
	}
}

// OutputFormat identifies a load-file serialization format.
type OutputFormat string

// Output format constants.
const (
	FormatDAT OutputFormat = "dat"
	FormatCSV OutputFormat = "csv"
	FormatOPT OutputFormat = "opt"
)

// Distribution selects the folder-assignment algorithm.
type Distribution string

// Distribution constants.
const (
	DistributionProportional Distribution = "proportional"
	DistributionExponential  Distribution = "exponential"
	DistributionGaussian     Distribution = "gaussian"
)

// Encoding identifies the text encoding of load-file output.
type Encoding string

// Encoding constants.
const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingUTF8BOM     Encoding = "utf-8-bom"
	EncodingUTF16LE     Encoding = "utf-16le"
	EncodingWindows1252 Encoding = "windows-1252"
)

// LineEnding identifies the line terminator style of load-file output.
type LineEnding string

// Line ending constants.
const (
	LineEndingCRLF LineEnding = "crlf"
	LineEndingLF   LineEnding = "lf"
)

// Terminator returns the literal line terminator.
func (l LineEnding) Terminator() string {
	if l == LineEndingLF {
		return "\n"
	}
	return "\r\n"
}

// Default DAT delimiters. Concordance-style: column delimiter is ASCII 20,
// quote delimiter is ASCII 254 (þ).
const (
	DefaultColumnDelimiter = "\x14"
	DefaultQuoteDelimiter  = "þ"
)

// ChaosSpec configures deliberate load-file corruption for one run.
// A nil ChaosSpec on the request disables chaos mode entirely.
type ChaosSpec struct {
	// Amount is either a percentage ("2%") or an exact line count ("40").
	// Empty defaults to "1%".
	Amount string
	// Types restricts the anomaly catalog. Empty enables every type valid
	// for the active format.
	Types []string
	// Seed makes target selection and mutation reproducible when set.
	Seed *int64
}

// GenerationRequest is the immutable configuration for one generation run.
// It is shared read-only across all workers and the consumer; nothing may
// mutate it after dispatch.
type GenerationRequest struct {
	// RunID identifies the run in logs and the audit document.
	RunID string
	// FileCount is the number of documents to generate.
	FileCount int64
	// FolderCount is the number of archive folders to spread documents over.
	FolderCount int
	// Distribution selects the folder-assignment algorithm.
	Distribution Distribution
	// FileType selects the content builder.
	FileType FileType
	// Concurrency is the requested producer parallelism. The pipeline may
	// downgrade it to preserve archive entry ordering.
	Concurrency int
	// Formats lists the load-file formats to emit.
	Formats []OutputFormat
	// WithText emits a sibling extracted-text stub per document.
	WithText bool
	// WithAttachments attaches a file to each email (eml only).
	WithAttachments bool
	// TargetSize pads generated files so total output approaches this many
	// bytes. Zero disables padding.
	TargetSize int64
	// LoadfileOnly skips the archive and writes load-file rows directly.
	LoadfileOnly bool
	// ColumnDelimiter and QuoteDelimiter shape DAT output. An empty quote
	// delimiter emits unquoted fields.
	ColumnDelimiter string
	QuoteDelimiter  string
	// Encoding and LineEnding shape the load-file byte stream.
	Encoding   Encoding
	LineEnding LineEnding
	// Chaos enables deliberate corruption of load-file output.
	Chaos *ChaosSpec
}

// Validation sentinel errors. Configuration errors surface before any
// generation starts.
var (
	ErrInvalidFileCount    = errors.New("file count must be at least 1")
	ErrInvalidFolderCount  = errors.New("folder count must be at least 1")
	ErrInvalidConcurrency  = errors.New("concurrency must be at least 1")
	ErrInvalidDistribution = errors.New("invalid distribution")
	ErrInvalidFileType     = errors.New("invalid file type")
	ErrInvalidFormat       = errors.New("invalid output format")
	ErrInvalidEncoding     = errors.New("invalid encoding")
	ErrInvalidLineEnding   = errors.New("invalid line ending")
	ErrNoFormats           = errors.New("at least one output format is required")
)

// Validate checks the request for configuration errors.
func (r *GenerationRequest) Validate() error {
	if r.FileCount < 1 {
		return ErrInvalidFileCount
	}
	if r.FolderCount < 1 {
		return ErrInvalidFolderCount
	}
	if r.Concurrency < 1 {
		return ErrInvalidConcurrency
	}
	switch r.Distribution {
	case DistributionProportional, DistributionExponential, DistributionGaussian:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDistribution, r.Distribution)
	}
	switch r.FileType {
	case FileTypeText, FileTypeEML, FileTypeTIFF:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFileType, r.FileType)
	}
	if len(r.Formats) == 0 {
		return ErrNoFormats
	}
	for _, f := range r.Formats {
		switch f {
		case FormatDAT, FormatCSV, FormatOPT:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidFormat, f)
		}
	}
	switch r.Encoding {
	case EncodingUTF8, EncodingUTF8BOM, EncodingUTF16LE, EncodingWindows1252:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidEncoding, r.Encoding)
	}
	switch r.LineEnding {
	case LineEndingCRLF, LineEndingLF:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLineEnding, r.LineEnding)
	}
	return nil
}
