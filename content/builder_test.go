package content_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/haybale/chaff/content"
	"github.com/haybale/chaff/types"
)

func workItem(index int64) types.WorkItem {
	return types.WorkItem{
		Index:        index,
		FolderNumber: 1,
		FolderName:   "folder_001",
		FileName:     "00000001.eml",
		ArchivePath:  "folder_001/00000001.eml",
	}
}

func TestNewBuilder(t *testing.T) {
	for _, ft := range []types.FileType{types.FileTypeText, types.FileTypeEML, types.FileTypeTIFF} {
		if _, err := content.NewBuilder(ft); err != nil {
			t.Errorf("%s: unexpected error: %v", ft, err)
		}
	}
	if _, err := content.NewBuilder(types.FileType("pdf")); err == nil {
		t.Error("expected error for unknown file type")
	}
}

func TestTextBuilder_Deterministic(t *testing.T) {
	b := content.TextBuilder{}
	first, err := b.Generate(workItem(5), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := b.Generate(workItem(5), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(first.Content, second.Content) {
		t.Error("expected identical content for identical index")
	}
	if first.PageCount < 1 {
		t.Errorf("expected positive page count, got %d", first.PageCount)
	}
}

func TestEMLBuilder_PlainMessage(t *testing.T) {
	req := &types.GenerationRequest{}
	res, err := content.EMLBuilder{}.Generate(workItem(3), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, header := range []string{"From: ", "To: ", "Subject: ", "Date: ", "MIME-Version: 1.0"} {
		if !bytes.Contains(res.Content, []byte(header)) {
			t.Errorf("missing header %q", header)
		}
	}
	if res.Attachment != nil {
		t.Error("expected no attachment without WithAttachments")
	}
}

func TestEMLBuilder_WithAttachment(t *testing.T) {
	req := &types.GenerationRequest{WithAttachments: true}
	res, err := content.EMLBuilder{}.Generate(workItem(3), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Attachment == nil {
		t.Fatal("expected attachment")
	}
	if res.Attachment.Name == "" || len(res.Attachment.Data) == 0 {
		t.Error("expected populated attachment")
	}
	if !bytes.Contains(res.Content, []byte("multipart/mixed")) {
		t.Error("expected multipart MIME message")
	}
	if !bytes.Contains(res.Content, []byte("Content-Transfer-Encoding: base64")) {
		t.Error("expected base64 attachment part")
	}
}

func TestTIFFBuilder_Magic(t *testing.T) {
	res, err := content.TIFFBuilder{}.Generate(workItem(9), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(res.Content, []byte{0x49, 0x49, 0x2A, 0x00}) {
		t.Error("expected little-endian TIFF magic prefix")
	}
}

func TestBuilders_ConcurrentUse(t *testing.T) {
	b := content.EMLBuilder{}
	req := &types.GenerationRequest{WithAttachments: true}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			for i := int64(1); i <= 50; i++ {
				if _, err := b.Generate(workItem(seed*50+i), req); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}(int64(w))
	}
	wg.Wait()
}
