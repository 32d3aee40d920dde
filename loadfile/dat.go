package loadfile

import (
	"fmt"
	"io"
	"strings"

	"github.com/haybale/chaff/types"
)

// DATWriter emits Concordance-style delimited load files: one header line
// followed by one line per document. The column delimiter defaults to
// ASCII 20 and the quote delimiter to ASCII 254; an empty quote delimiter
// emits unquoted fields.
type DATWriter struct {
	// Intercept, when non-nil, sees every line before it is written.
	Intercept Interceptor
}

// Write implements RowWriter. Rows must already be sorted by work-item
// index; the writer serializes them as given.
func (d *DATWriter) Write(w io.Writer, req *types.GenerationRequest, files []types.FileData) error {
	cols := ColumnsFor(req)
	lw, err := newLineWriter(w, req, d.Intercept)
	if err != nil {
		return err
	}

	if err := lw.WriteLine("N/A", formatDelimited(cols.Header(), req)); err != nil {
		return fmt.Errorf("write DAT header: %w", err)
	}
	for i := range files {
		f := &files[i]
		line := formatDelimited(cols.Row(*f), req)
		if err := lw.WriteLine(f.Item.DocID(), line); err != nil {
			return fmt.Errorf("write DAT row %s: %w", f.Item.DocID(), err)
		}
	}
	return nil
}

// formatDelimited joins fields with the column delimiter, wrapping each in
// the quote delimiter when one is configured.
func formatDelimited(fields []string, req *types.GenerationRequest) string {
	col := columnDelimiter(req)
	quote := req.QuoteDelimiter
	if quote == "" {
		return strings.Join(fields, col)
	}

	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteString(col)
		}
		b.WriteString(quote)
		b.WriteString(f)
		b.WriteString(quote)
	}
	return b.String()
}
