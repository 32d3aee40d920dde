// Package content produces stub document bytes for the generation pipeline.
//
// Builders are deliberately simple byte producers: the pipeline treats them
// as an injected collaborator and never inspects the bytes. All builders are
// deterministic functions of the work-item index so re-runs produce
// identical content, and all are safe for concurrent use by multiple
// workers.
package content

import (
	"bytes"
	"fmt"

	"github.com/haybale/chaff/types"
)

// Result is the product of one Generate call.
type Result struct {
	Content    []byte
	Attachment *types.Attachment
	PageCount  int
}

// Builder produces the content bytes for one work item.
// Implementations must be safely callable concurrently from multiple
// workers with no shared mutable state across calls.
type Builder interface {
	Generate(item types.WorkItem, req *types.GenerationRequest) (Result, error)
}

// NewBuilder returns the builder for the requested file type.
func NewBuilder(fileType types.FileType) (Builder, error) {
	switch fileType {
	case types.FileTypeText:
		return TextBuilder{}, nil
	case types.FileTypeEML:
		return EMLBuilder{}, nil
	case types.FileTypeTIFF:
		return TIFFBuilder{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidFileType, fileType)
	}
}

// fillerWords seed the deterministic paragraph generator.
var fillerWords = []string{
	"claim", "exhibit", "deposition", "motion", "discovery", "counsel",
	"pursuant", "herein", "agreement", "liability", "witness", "record",
	"statute", "damages", "hearing", "filing",
}

// paragraph builds a deterministic filler paragraph for the given index.
func paragraph(index int64, sentences int) []byte {
	var buf bytes.Buffer
	for s := 0; s < sentences; s++ {
		n := 6 + int((index+int64(s))%7)
		for w := 0; w < n; w++ {
			word := fillerWords[(index+int64(s*w)+int64(w))%int64(len(fillerWords))]
			if w == 0 {
				buf.WriteString(fmt.Sprintf("%c%s", word[0]-('a'-'A'), word[1:]))
			} else {
				buf.WriteByte(' ')
				buf.WriteString(word)
			}
		}
		buf.WriteString(". ")
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

// pageCount derives a stable per-document page count from the index.
func pageCount(index int64) int {
	return 1 + int(index%7)
}

// TextBuilder produces plain-text documents.
type TextBuilder struct{}

// Generate implements Builder.
func (TextBuilder) Generate(item types.WorkItem, _ *types.GenerationRequest) (Result, error) {
	pages := pageCount(item.Index)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Document %s\n\n", item.DocID())
	for p := 0; p < pages; p++ {
		buf.Write(paragraph(item.Index+int64(p), 4))
	}
	return Result{Content: buf.Bytes(), PageCount: pages}, nil
}

// TextStub returns the extracted-text sibling content for a document. The
// consumer writes this alongside the main entry when text extraction is
// requested.
func TextStub(item types.WorkItem) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Extracted text for %s\n\n", item.DocID())
	buf.Write(paragraph(item.Index, 3))
	return buf.Bytes()
}

// AttachmentTextStub returns the extracted-text sibling content for an
// attachment.
func AttachmentTextStub(item types.WorkItem, name string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Extracted text for attachment %s of %s\n\n", name, item.DocID())
	buf.Write(paragraph(item.Index+1, 2))
	return buf.Bytes()
}
