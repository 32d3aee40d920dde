// Package manifest writes the binary manifest sidecar: one msgpack record
// per archive entry, streamed in write order. The manifest lets downstream
// tooling inventory a fixture archive without decompressing it.
package manifest

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Entry kinds, one per archive entry role.
const (
	KindDocument       = "document"
	KindText           = "text"
	KindAttachment     = "attachment"
	KindAttachmentText = "attachment_text"
)

// Entry describes one archive entry.
type Entry struct {
	// Index is the 1-based work-item index the entry belongs to.
	Index int64 `msgpack:"index"`
	// Path is the entry's path inside the archive.
	Path string `msgpack:"path"`
	// Kind is one of the Kind constants.
	Kind string `msgpack:"kind"`
	// Size is the uncompressed entry size in bytes.
	Size int64 `msgpack:"size"`
}

// Writer streams entries to a sidecar file. Append is called from the
// single archive-consumer goroutine only.
type Writer struct {
	enc   *msgpack.Encoder
	count int64
}

// NewWriter returns a Writer over an open stream.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: msgpack.NewEncoder(w)}
}

// Append writes one entry record.
func (m *Writer) Append(e Entry) error {
	if err := m.enc.Encode(e); err != nil {
		return fmt.Errorf("encode manifest entry %s: %w", e.Path, err)
	}
	m.count++
	return nil
}

// Count returns the number of entries written so far.
func (m *Writer) Count() int64 {
	return m.count
}

// Read decodes every entry from a manifest stream.
func Read(r io.Reader) ([]Entry, error) {
	dec := msgpack.NewDecoder(r)
	var out []Entry
	for {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			if err == io.EOF {
				return out, nil
			}
			return nil, fmt.Errorf("decode manifest entry %d: %w", len(out), err)
		}
		out = append(out, e)
	}
}
