package loadfile

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/haybale/chaff/types"
)

// optVolume is the fixed volume label emitted in OPT rows.
const optVolume = "VOL001"

// OPTWriter emits Opticon cross-reference files: strictly 7 comma-separated
// fields (6 commas) per line, no header row.
//
// Field layout: alias, volume, image path, document-boundary flag, box,
// folder, page count.
type OPTWriter struct {
	// Intercept, when non-nil, sees every line before it is written.
	Intercept Interceptor
}

// Write implements RowWriter.
func (o *OPTWriter) Write(w io.Writer, req *types.GenerationRequest, files []types.FileData) error {
	lw, err := newLineWriter(w, req, o.Intercept)
	if err != nil {
		return err
	}

	for i := range files {
		f := &files[i]
		fields := []string{
			f.Item.DocID(),
			optVolume,
			f.Item.ArchivePath,
			"Y", // document boundary
			"",  // box
			"",  // folder
			strconv.Itoa(f.PageCount),
		}
		if err := lw.WriteLine(f.Item.DocID(), strings.Join(fields, ",")); err != nil {
			return fmt.Errorf("write OPT row %s: %w", f.Item.DocID(), err)
		}
	}
	return nil
}
