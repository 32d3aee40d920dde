package loadfile

import (
	"strconv"

	"github.com/haybale/chaff/content"
	"github.com/haybale/chaff/types"
)

// ColumnSet is the single declarative answer to "which optional columns
// apply for this run". Every format-specific serializer consumes it
// uniformly instead of re-implementing per-format conditionals.
type ColumnSet struct {
	// Metadata includes custodian and creation-date columns.
	Metadata bool
	// EML includes sender/recipient/subject/sent-date columns.
	EML bool
	// PageCount includes the page-count column.
	PageCount bool
	// TextPath includes the extracted-text path column.
	TextPath bool
}

// ColumnsFor derives the column set from the request.
func ColumnsFor(req *types.GenerationRequest) ColumnSet {
	return ColumnSet{
		Metadata:  true,
		EML:       req.FileType == types.FileTypeEML,
		PageCount: true,
		TextPath:  req.WithText,
	}
}

// Header returns the column names, base columns first, optional columns in
// a fixed order.
func (c ColumnSet) Header() []string {
	cols := []string{"DOCID", "FILENAME", "FOLDER", "FILEPATH"}
	if c.Metadata {
		cols = append(cols, "CUSTODIAN", "DATECREATED")
	}
	if c.EML {
		cols = append(cols, "FROM", "TO", "SUBJECT", "DATESENT")
	}
	if c.PageCount {
		cols = append(cols, "PAGECOUNT")
	}
	if c.TextPath {
		cols = append(cols, "TEXTPATH")
	}
	return cols
}

// Row returns the field values for one document, in Header order.
func (c ColumnSet) Row(f types.FileData) []string {
	item := f.Item
	fields := []string{item.DocID(), item.FileName, item.FolderName, item.ArchivePath}
	if c.Metadata {
		fields = append(fields,
			content.EmailFrom(item.Index),
			content.SentDate(item.Index).Format("2006-01-02"),
		)
	}
	if c.EML {
		fields = append(fields,
			content.EmailFrom(item.Index),
			content.EmailTo(item.Index),
			content.EmailSubject(item),
			content.SentDate(item.Index).Format("01/02/2006 15:04"),
		)
	}
	if c.PageCount {
		fields = append(fields, strconv.Itoa(f.PageCount))
	}
	if c.TextPath {
		fields = append(fields, TextPath(item.ArchivePath))
	}
	return fields
}

// TextPath returns the in-archive path of a document's extracted-text
// sibling. Text entries live under a text/ prefix so they never collide
// with natives that are already .txt files.
func TextPath(archivePath string) string {
	for i := len(archivePath) - 1; i >= 0; i-- {
		if archivePath[i] == '.' {
			return "text/" + archivePath[:i] + ".txt"
		}
		if archivePath[i] == '/' {
			break
		}
	}
	return "text/" + archivePath + ".txt"
}
