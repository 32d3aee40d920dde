package loadfile

import (
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/text/transform"

	"github.com/haybale/chaff/types"
)

// CSVWriter emits standard RFC 4180 CSV with a header row. CSV output is
// not a chaos target; corruption applies to DAT and OPT streams only.
type CSVWriter struct{}

// Write implements RowWriter.
func (c *CSVWriter) Write(w io.Writer, req *types.GenerationRequest, files []types.FileData) error {
	if bom := BOM(req.Encoding); bom != nil {
		if _, err := w.Write(bom); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	out := w
	if enc := newEncoder(req.Encoding); enc != nil {
		tw := transform.NewWriter(w, enc)
		defer func() { _ = tw.Close() }()
		out = tw
	}

	cw := csv.NewWriter(out)
	cw.UseCRLF = req.LineEnding != types.LineEndingLF

	cols := ColumnsFor(req)
	if err := cw.Write(cols.Header()); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for i := range files {
		f := &files[i]
		if err := cw.Write(cols.Row(*f)); err != nil {
			return fmt.Errorf("write CSV row %s: %w", f.Item.DocID(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}
