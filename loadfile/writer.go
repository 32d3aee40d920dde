// Package loadfile serializes ordered generation results into load files
// (DAT, CSV, OPT). Writers accept an open stream and the full ordered row
// set; they assume nothing about physical storage.
//
// Line-oriented writers route every serialized line through an optional
// Interceptor before it reaches the stream, which is how chaos mode hooks
// into load-file output.
package loadfile

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/haybale/chaff/types"
)

// Interceptor inspects and optionally rewrites one serialized line before it
// is encoded and written, and may emit raw bytes between two adjacent lines.
// Implementations are driven from the single writer goroutine only.
type Interceptor interface {
	// InterceptLine receives the 1-based line number, the record ID on the
	// line ("N/A" for headers), and the serialized line without its
	// terminator. It returns the line to write.
	InterceptLine(lineNumber int64, recordID, line string) string

	// BoundaryBytes returns raw bytes to inject between lines prev and next,
	// or nil. The bytes bypass the output encoder so invalid sequences
	// survive intact.
	BoundaryBytes(prev, next int64) []byte
}

// RowWriter serializes an ordered row set to a stream. Invoked once per
// requested output format, after all data entries exist.
type RowWriter interface {
	Write(w io.Writer, req *types.GenerationRequest, files []types.FileData) error
}

// WriterFor returns the RowWriter for a format. The interceptor applies to
// line-oriented formats (DAT, OPT); CSV ignores it.
func WriterFor(format types.OutputFormat, intercept Interceptor) (RowWriter, error) {
	switch format {
	case types.FormatDAT:
		return &DATWriter{Intercept: intercept}, nil
	case types.FormatCSV:
		return &CSVWriter{}, nil
	case types.FormatOPT:
		return &OPTWriter{Intercept: intercept}, nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidFormat, format)
	}
}

// LineCount returns the number of physical lines a format emits for n data
// rows. DAT and CSV carry a header line; OPT does not. Chaos target
// selection needs this before any line is written.
func LineCount(format types.OutputFormat, rows int64) int64 {
	if format == types.FormatOPT {
		return rows
	}
	return rows + 1
}

// BOM returns the byte-order mark for the encoding, or nil.
func BOM(enc types.Encoding) []byte {
	switch enc {
	case types.EncodingUTF8BOM:
		return []byte{0xEF, 0xBB, 0xBF}
	case types.EncodingUTF16LE:
		return []byte{0xFF, 0xFE}
	default:
		return nil
	}
}

// newEncoder returns the x/text encoder for the encoding, or nil when the
// output is already UTF-8.
func newEncoder(enc types.Encoding) *encoding.Encoder {
	switch enc {
	case types.EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	case types.EncodingWindows1252:
		return charmap.Windows1252.NewEncoder()
	default:
		return nil
	}
}

// lineWriter writes terminated, encoded lines and threads each one through
// the interceptor. Boundary bytes are written raw, after the line
// terminator, so they land strictly between two lines.
type lineWriter struct {
	w          io.Writer
	enc        *encoding.Encoder
	terminator string
	intercept  Interceptor
	line       int64
}

func newLineWriter(w io.Writer, req *types.GenerationRequest, intercept Interceptor) (*lineWriter, error) {
	if bom := BOM(req.Encoding); bom != nil {
		if _, err := w.Write(bom); err != nil {
			return nil, fmt.Errorf("write BOM: %w", err)
		}
	}
	return &lineWriter{
		w:          w,
		enc:        newEncoder(req.Encoding),
		terminator: req.LineEnding.Terminator(),
		intercept:  intercept,
	}, nil
}

// WriteLine writes one line plus terminator, then any boundary bytes the
// interceptor injects between this line and the next.
func (lw *lineWriter) WriteLine(recordID, line string) error {
	lw.line++
	n := lw.line

	if lw.intercept != nil {
		line = lw.intercept.InterceptLine(n, recordID, line)
	}

	data, err := lw.encode(line + lw.terminator)
	if err != nil {
		return fmt.Errorf("encode line %d: %w", n, err)
	}
	if _, err := lw.w.Write(data); err != nil {
		return fmt.Errorf("write line %d: %w", n, err)
	}

	if lw.intercept != nil {
		if b := lw.intercept.BoundaryBytes(n, n+1); len(b) > 0 {
			if _, err := lw.w.Write(b); err != nil {
				return fmt.Errorf("write boundary bytes after line %d: %w", n, err)
			}
		}
	}
	return nil
}

func (lw *lineWriter) encode(s string) ([]byte, error) {
	if lw.enc == nil {
		return []byte(s), nil
	}
	out, err := lw.enc.String(s)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// columnDelimiter returns the request's column delimiter, defaulted.
func columnDelimiter(req *types.GenerationRequest) string {
	if req.ColumnDelimiter == "" {
		return types.DefaultColumnDelimiter
	}
	return req.ColumnDelimiter
}
