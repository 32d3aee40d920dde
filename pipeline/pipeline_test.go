package pipeline_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/haybale/chaff/arena"
	"github.com/haybale/chaff/log"
	"github.com/haybale/chaff/manifest"
	"github.com/haybale/chaff/metrics"
	"github.com/haybale/chaff/pipeline"
	"github.com/haybale/chaff/types"
)

func testLogger() *log.Logger {
	return log.NewLogger("test", 0).WithOutput(io.Discard)
}

func baseRequest() *types.GenerationRequest {
	return &types.GenerationRequest{
		RunID:        "testrun",
		FileCount:    5,
		FolderCount:  1,
		Distribution: types.DistributionProportional,
		FileType:     types.FileTypeText,
		Concurrency:  2,
		Formats:      []types.OutputFormat{types.FormatDAT},
		Encoding:     types.EncodingUTF8,
		LineEnding:   types.LineEndingCRLF,
	}
}

func newRunner(t *testing.T) *pipeline.Runner {
	t.Helper()
	return &pipeline.Runner{
		OutputDir: t.TempDir(),
		Logger:    testLogger(),
		Metrics:   metrics.NewCollector("testrun", "text", "proportional"),
		Arena:     arena.New(),
	}
}

func TestWorkSource_EnumeratesAllIndices(t *testing.T) {
	req := baseRequest()
	req.FileCount = 10
	src := pipeline.NewWorkSource(req)

	seen := make(map[int64]bool)
	for {
		item, ok, err := src.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			break
		}
		if seen[item.Index] {
			t.Fatalf("index %d handed out twice", item.Index)
		}
		seen[item.Index] = true

		if item.FolderName != "folder_001" {
			t.Errorf("single folder run: got folder %q", item.FolderName)
		}
		if !strings.HasPrefix(item.ArchivePath, item.FolderName+"/") {
			t.Errorf("archive path %q not under folder", item.ArchivePath)
		}
		if !strings.HasSuffix(item.FileName, ".txt") {
			t.Errorf("unexpected extension on %q", item.FileName)
		}
	}
	if len(seen) != 10 {
		t.Errorf("expected 10 items, got %d", len(seen))
	}

	// Exhausted sources stay exhausted.
	if _, ok, _ := src.Next(); ok {
		t.Error("source produced an item after exhaustion")
	}
}

func TestEffectiveConcurrency(t *testing.T) {
	req := baseRequest()
	req.Concurrency = 8
	if got := pipeline.EffectiveConcurrency(req); got != 8 {
		t.Errorf("text: expected 8, got %d", got)
	}

	req.FileType = types.FileTypeEML
	if got := pipeline.EffectiveConcurrency(req); got != 8 {
		t.Errorf("plain eml: expected 8, got %d", got)
	}

	req.WithAttachments = true
	if got := pipeline.EffectiveConcurrency(req); got != 1 {
		t.Errorf("eml with attachments: expected downgrade to 1, got %d", got)
	}

	req.WithAttachments = false
	req.WithText = true
	if got := pipeline.EffectiveConcurrency(req); got != 1 {
		t.Errorf("eml with text: expected downgrade to 1, got %d", got)
	}
}

func TestRun_ArchiveAndLoadfile(t *testing.T) {
	r := newRunner(t)
	req := baseRequest()

	res, err := r.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Records != 5 {
		t.Errorf("expected 5 records, got %d", res.Records)
	}

	zr, err := zip.OpenReader(res.ArchivePath)
	if err != nil {
		t.Fatalf("archive unreadable: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 5 {
		t.Fatalf("expected 5 archive entries, got %d", len(zr.File))
	}
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "folder_001/") {
			t.Errorf("entry %q outside folder_001", f.Name)
		}
	}

	mf, err := os.Open(res.ManifestPath)
	if err != nil {
		t.Fatalf("manifest unreadable: %v", err)
	}
	defer mf.Close()
	entries, err := manifest.Read(mf)
	if err != nil {
		t.Fatalf("manifest decode: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("expected 5 manifest entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Kind != manifest.KindDocument {
			t.Errorf("entry %s: unexpected kind %q", e.Path, e.Kind)
		}
	}

	if len(res.LoadfilePaths) != 1 {
		t.Fatalf("expected 1 load file, got %d", len(res.LoadfilePaths))
	}
	data, err := os.ReadFile(res.LoadfilePaths[0])
	if err != nil {
		t.Fatalf("load file unreadable: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\r\n"), "\r\n")
	if len(lines) != 6 {
		t.Errorf("expected header + 5 rows, got %d lines", len(lines))
	}
	// Rows are serialized in index order regardless of worker completion order.
	for i, want := range []string{"DOC00000001", "DOC00000002", "DOC00000003", "DOC00000004", "DOC00000005"} {
		if !strings.Contains(lines[i+1], want) {
			t.Errorf("row %d: expected %s, got %q", i+1, want, lines[i+1])
		}
	}

	if len(res.AuditPaths) != 1 {
		t.Fatalf("expected 1 audit document, got %d", len(res.AuditPaths))
	}
	if _, err := os.Stat(res.AuditPaths[0]); err != nil {
		t.Errorf("audit document missing: %v", err)
	}

	snap := res.Metrics
	if snap.FilesGenerated != 5 || snap.EntriesWritten != 5 {
		t.Errorf("unexpected metrics: %+v", snap)
	}
	if snap.RowsWritten != 5 || snap.LinesWritten != 6 {
		t.Errorf("unexpected load-file metrics: %+v", snap)
	}
}

func TestRun_EMLWithSiblings_EntryOrdering(t *testing.T) {
	r := newRunner(t)
	req := baseRequest()
	req.FileType = types.FileTypeEML
	req.WithText = true
	req.WithAttachments = true
	req.Concurrency = 8 // must be downgraded internally

	res, err := r.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	zr, err := zip.OpenReader(res.ArchivePath)
	if err != nil {
		t.Fatalf("archive unreadable: %v", err)
	}
	defer zr.Close()

	// 4 entries per item: content, text, attachment, attachment text.
	if len(zr.File) != 20 {
		t.Fatalf("expected 20 archive entries, got %d", len(zr.File))
	}
	for i := 0; i < 20; i += 4 {
		group := zr.File[i : i+4]
		if !strings.HasSuffix(group[0].Name, ".eml") {
			t.Errorf("group %d: first entry %q is not the document", i/4, group[0].Name)
		}
		if !strings.HasPrefix(group[1].Name, "text/") {
			t.Errorf("group %d: second entry %q is not the text sibling", i/4, group[1].Name)
		}
		if !strings.Contains(group[2].Name, "attachment_") || strings.HasPrefix(group[2].Name, "text/") {
			t.Errorf("group %d: third entry %q is not the attachment", i/4, group[2].Name)
		}
		if !strings.HasPrefix(group[3].Name, "text/") || !strings.Contains(group[3].Name, "attachment_") {
			t.Errorf("group %d: fourth entry %q is not the attachment text", i/4, group[3].Name)
		}
	}
}

func TestRun_LoadfileOnly(t *testing.T) {
	r := newRunner(t)
	req := baseRequest()
	req.LoadfileOnly = true
	req.Formats = []types.OutputFormat{types.FormatDAT, types.FormatOPT}

	res, err := r.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ArchivePath != "" || res.ManifestPath != "" {
		t.Error("loadfile-only run should not produce an archive or manifest")
	}
	if len(res.LoadfilePaths) != 2 {
		t.Fatalf("expected 2 load files, got %d", len(res.LoadfilePaths))
	}
	for _, p := range res.LoadfilePaths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("load file missing: %v", err)
		}
	}

	// No zip archive anywhere in the output directory.
	matches, _ := filepath.Glob(filepath.Join(r.OutputDir, "*.zip"))
	if len(matches) != 0 {
		t.Errorf("unexpected archive files: %v", matches)
	}
}

func TestRun_ValidationErrorsBeforeGeneration(t *testing.T) {
	r := newRunner(t)

	req := baseRequest()
	req.FileCount = 0
	if _, err := r.Run(context.Background(), req); !errors.Is(err, types.ErrInvalidFileCount) {
		t.Errorf("expected ErrInvalidFileCount, got %v", err)
	}

	req = baseRequest()
	req.Chaos = &types.ChaosSpec{Amount: "0%"}
	if _, err := r.Run(context.Background(), req); err == nil {
		t.Error("expected chaos configuration error")
	}

	// Nothing was written for either failed run.
	entries, _ := os.ReadDir(r.OutputDir)
	if len(entries) != 0 {
		t.Errorf("expected empty output directory, found %d entries", len(entries))
	}
}

func TestRun_ChaosAnomaliesRecorded(t *testing.T) {
	r := newRunner(t)
	req := baseRequest()
	req.FileCount = 100
	req.QuoteDelimiter = types.DefaultQuoteDelimiter
	seed := int64(42)
	req.Chaos = &types.ChaosSpec{Amount: "10%", Seed: &seed}

	res, err := r.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 101 physical lines at 10% rounds up to 11 targets; the encoding type
	// can only come up short when it lands on the final line.
	if res.Anomalies < 10 || res.Anomalies > 11 {
		t.Errorf("expected about 11 anomalies, got %d", res.Anomalies)
	}

	data, err := os.ReadFile(res.AuditPaths[0])
	if err != nil {
		t.Fatalf("audit document unreadable: %v", err)
	}
	if !strings.Contains(string(data), "chaos:") {
		t.Error("audit document missing chaos section")
	}
	if !strings.Contains(string(data), "anomalies:") {
		t.Error("audit document missing anomaly trail")
	}
}

func TestRun_TargetSizePadsOutput(t *testing.T) {
	r := newRunner(t)
	req := baseRequest()
	req.TargetSize = 50 << 10 // 10 KB per file across 5 files

	res, err := r.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := res.Metrics
	if snap.PadBytes == 0 {
		t.Error("expected padding to be applied")
	}
	if snap.BytesWritten < 50<<10 {
		t.Errorf("expected at least %d uncompressed bytes, got %d", 50<<10, snap.BytesWritten)
	}
	if snap.ArenaRentals == 0 && snap.ArenaFallbacks == 0 {
		t.Error("expected padded buffers to be accounted")
	}
}

func TestRun_ContextCancellation(t *testing.T) {
	r := newRunner(t)
	req := baseRequest()
	req.FileCount = 100000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Run(ctx, req); err == nil {
		t.Error("expected error from cancelled context")
	}
}
