package metrics_test

import (
	"sync"
	"testing"

	"github.com/haybale/chaff/metrics"
)

func TestCollector_Counters(t *testing.T) {
	c := metrics.NewCollector("run-1", "eml", "gaussian")

	c.IncFileGenerated(3)
	c.IncFileGenerated(5)
	c.AddPadBytes(1024)
	c.IncEntryWritten(2048)
	c.IncEntryWritten(512)
	c.AddRowsWritten(2)
	c.AddLinesWritten(3)
	c.IncArenaRental()
	c.IncArenaFallback()
	c.AbsorbAnomalyCount(7)

	snap := c.Snapshot()
	if snap.FilesGenerated != 2 || snap.PagesGenerated != 8 {
		t.Errorf("generation counters: %+v", snap)
	}
	if snap.PadBytes != 1024 {
		t.Errorf("pad bytes: %d", snap.PadBytes)
	}
	if snap.EntriesWritten != 2 || snap.BytesWritten != 2560 {
		t.Errorf("archive counters: %+v", snap)
	}
	if snap.RowsWritten != 2 || snap.LinesWritten != 3 {
		t.Errorf("load-file counters: %+v", snap)
	}
	if snap.ArenaRentals != 1 || snap.ArenaFallbacks != 1 {
		t.Errorf("arena counters: %+v", snap)
	}
	if snap.AnomaliesInjected != 7 {
		t.Errorf("anomaly count: %d", snap.AnomaliesInjected)
	}
	if snap.RunID != "run-1" || snap.FileType != "eml" || snap.Distribution != "gaussian" {
		t.Errorf("dimensions: %+v", snap)
	}
}

func TestCollector_SnapshotIsPointInTime(t *testing.T) {
	c := metrics.NewCollector("run-1", "text", "proportional")
	c.IncFileGenerated(1)

	snap := c.Snapshot()
	c.IncFileGenerated(1)

	if snap.FilesGenerated != 1 {
		t.Errorf("snapshot mutated after creation: %d", snap.FilesGenerated)
	}
	if c.Snapshot().FilesGenerated != 2 {
		t.Error("collector did not keep counting")
	}
}

func TestCollector_NilReceiverSafe(t *testing.T) {
	var c *metrics.Collector

	c.IncFileGenerated(1)
	c.AddPadBytes(1)
	c.IncEntryWritten(1)
	c.AddRowsWritten(1)
	c.AddLinesWritten(1)
	c.IncArenaRental()
	c.IncArenaFallback()
	c.AbsorbAnomalyCount(1)

	if snap := c.Snapshot(); snap.FilesGenerated != 0 {
		t.Errorf("nil collector snapshot: %+v", snap)
	}
}

func TestCollector_ConcurrentIncrements(t *testing.T) {
	c := metrics.NewCollector("run-1", "text", "proportional")

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c.IncFileGenerated(1)
				c.IncEntryWritten(10)
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	if snap.FilesGenerated != 800 {
		t.Errorf("expected 800 files, got %d", snap.FilesGenerated)
	}
	if snap.BytesWritten != 8000 {
		t.Errorf("expected 8000 bytes, got %d", snap.BytesWritten)
	}
}
