package types

import "fmt"

// WorkItem describes one unit of file-generation work. Items are created by
// the work source at enumeration time, are immutable, and are consumed
// exactly once by exactly one worker. Index is 1-based and globally unique
// within a run.
type WorkItem struct {
	Index        int64
	FolderNumber int
	FolderName   string
	FileName     string
	ArchivePath  string
}

// DocID returns the record identifier used in load files.
func (w WorkItem) DocID() string {
	return fmt.Sprintf("DOC%08d", w.Index)
}

// Attachment is an optional sibling file generated alongside a document.
type Attachment struct {
	Name string
	Data []byte
}

// FileData is the product of one worker: the work item plus its generated
// bytes. Ownership transfers worker -> queue -> consumer; Release must be
// invoked exactly once by the consumer after Content has been fully written,
// and never while the data is still in flight.
type FileData struct {
	Item       WorkItem
	Content    []byte
	Attachment *Attachment
	PageCount  int

	// Release returns the pooled buffer backing Content. Nil when the
	// content was directly allocated.
	Release func()
}
