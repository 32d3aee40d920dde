// Package metrics provides per-run metrics collection.
//
// The Collector accumulates counters during a single generation run. It is a
// leaf package with no internal dependencies. Chaos anomaly counts are
// absorbed from the chaos engine at run completion rather than recorded live,
// avoiding double-counting.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all run metrics. Returned
// by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Generation
	FilesGenerated int64
	PagesGenerated int64
	PadBytes       int64

	// Archive
	EntriesWritten int64
	BytesWritten   int64

	// Load files
	RowsWritten  int64
	LinesWritten int64

	// Memory arena
	ArenaRentals   int64
	ArenaFallbacks int64

	// Chaos (absorbed at run completion)
	AnomaliesInjected int64

	// Dimensions (informational, set at construction)
	RunID        string
	FileType     string
	Distribution string
}

// Collector accumulates metrics during a single run.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	filesGenerated int64
	pagesGenerated int64
	padBytes       int64

	entriesWritten int64
	bytesWritten   int64

	rowsWritten  int64
	linesWritten int64

	arenaRentals   int64
	arenaFallbacks int64

	anomaliesInjected int64

	runID        string
	fileType     string
	distribution string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(runID, fileType, distribution string) *Collector {
	return &Collector{
		runID:        runID,
		fileType:     fileType,
		distribution: distribution,
	}
}

// IncFileGenerated records one generated document and its page count.
func (c *Collector) IncFileGenerated(pages int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.filesGenerated++
	c.pagesGenerated += int64(pages)
	c.mu.Unlock()
}

// AddPadBytes records padding bytes materialized for size targeting.
func (c *Collector) AddPadBytes(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.padBytes += n
	c.mu.Unlock()
}

// IncEntryWritten records one archive entry and its size.
func (c *Collector) IncEntryWritten(size int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entriesWritten++
	c.bytesWritten += size
	c.mu.Unlock()
}

// AddRowsWritten records load-file data rows serialized.
func (c *Collector) AddRowsWritten(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.rowsWritten += n
	c.mu.Unlock()
}

// AddLinesWritten records physical load-file lines written, headers included.
func (c *Collector) AddLinesWritten(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.linesWritten += n
	c.mu.Unlock()
}

// IncArenaRental records a buffer served from the shared pool.
func (c *Collector) IncArenaRental() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.arenaRentals++
	c.mu.Unlock()
}

// IncArenaFallback records a direct allocation taken when the pool declined.
func (c *Collector) IncArenaFallback() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.arenaFallbacks++
	c.mu.Unlock()
}

// AbsorbAnomalyCount copies the final anomaly count from the chaos engine.
// Called once after run completion.
func (c *Collector) AbsorbAnomalyCount(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.anomaliesInjected = n
	c.mu.Unlock()
}

// Snapshot returns an immutable point-in-time view of all metrics. The
// returned Snapshot is safe to read concurrently; the Collector can continue
// to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		FilesGenerated: c.filesGenerated,
		PagesGenerated: c.pagesGenerated,
		PadBytes:       c.padBytes,

		EntriesWritten: c.entriesWritten,
		BytesWritten:   c.bytesWritten,

		RowsWritten:  c.rowsWritten,
		LinesWritten: c.linesWritten,

		ArenaRentals:   c.arenaRentals,
		ArenaFallbacks: c.arenaFallbacks,

		AnomaliesInjected: c.anomaliesInjected,

		RunID:        c.runID,
		FileType:     c.fileType,
		Distribution: c.distribution,
	}
}
