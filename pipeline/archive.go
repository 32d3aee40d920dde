package pipeline

import (
	"fmt"
	"sort"

	"github.com/klauspost/compress/zip"

	"github.com/haybale/chaff/content"
	"github.com/haybale/chaff/loadfile"
	"github.com/haybale/chaff/log"
	"github.com/haybale/chaff/manifest"
	"github.com/haybale/chaff/metrics"
	"github.com/haybale/chaff/types"
)

// consumer drains the producer channel from a single goroutine. With an
// archive writer attached it serializes entries in a fixed per-item order:
// document content, extracted text, attachment, attachment text. With a nil
// archive writer (loadfile-only mode) it only collects rows.
//
// Entry ordering within one item is guaranteed by single-threaded
// consumption; ordering across items follows channel arrival, which is why
// load-file rows are sorted by index afterward.
type consumer struct {
	zw      *zip.Writer
	man     *manifest.Writer
	metrics *metrics.Collector
	logger  *log.Logger
}

// consume drains in until it closes, releasing every pooled buffer exactly
// once. It returns the collected rows sorted by work-item index, stripped
// of content bytes.
func (c *consumer) consume(req *types.GenerationRequest, in <-chan types.FileData) ([]types.FileData, error) {
	var rows []types.FileData
	for fd := range in {
		err := c.writeEntries(req, &fd)
		if fd.Release != nil {
			fd.Release()
			fd.Release = nil
		}
		if err != nil {
			return nil, err
		}

		fd.Content = nil
		rows = append(rows, fd)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Item.Index < rows[j].Item.Index
	})
	return rows, nil
}

// writeEntries emits the archive entries for one item in the fixed order.
func (c *consumer) writeEntries(req *types.GenerationRequest, fd *types.FileData) error {
	if c.zw == nil {
		return nil
	}
	item := fd.Item

	if err := c.add(item.Index, item.ArchivePath, manifest.KindDocument, fd.Content); err != nil {
		return err
	}
	if req.WithText {
		path := loadfile.TextPath(item.ArchivePath)
		if err := c.add(item.Index, path, manifest.KindText, content.TextStub(item)); err != nil {
			return err
		}
	}
	if fd.Attachment != nil {
		path := item.FolderName + "/" + fd.Attachment.Name
		if err := c.add(item.Index, path, manifest.KindAttachment, fd.Attachment.Data); err != nil {
			return err
		}
		if req.WithText {
			textPath := loadfile.TextPath(path)
			stub := content.AttachmentTextStub(item, fd.Attachment.Name)
			if err := c.add(item.Index, textPath, manifest.KindAttachmentText, stub); err != nil {
				return err
			}
		}
	}
	return nil
}

// add writes one archive entry and its manifest record.
func (c *consumer) add(index int64, path, kind string, data []byte) error {
	w, err := c.zw.Create(path)
	if err != nil {
		return fmt.Errorf("create archive entry %s: %w", path, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write archive entry %s: %w", path, err)
	}
	c.metrics.IncEntryWritten(int64(len(data)))

	if c.man != nil {
		return c.man.Append(manifest.Entry{Index: index, Path: path, Kind: kind, Size: int64(len(data))})
	}
	return nil
}
