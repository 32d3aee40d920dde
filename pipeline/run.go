package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"

	"github.com/haybale/chaff/arena"
	"github.com/haybale/chaff/audit"
	"github.com/haybale/chaff/chaos"
	"github.com/haybale/chaff/content"
	"github.com/haybale/chaff/iox"
	"github.com/haybale/chaff/loadfile"
	"github.com/haybale/chaff/log"
	"github.com/haybale/chaff/manifest"
	"github.com/haybale/chaff/metrics"
	"github.com/haybale/chaff/types"
)

// Runner owns the resources shared by one generation run.
type Runner struct {
	// OutputDir receives the archive, manifest, load files, and audit
	// documents. Created if missing.
	OutputDir string
	Logger    *log.Logger
	Metrics   *metrics.Collector
	Arena     *arena.Arena
}

// Result summarizes a completed run.
type Result struct {
	RunID         string
	ArchivePath   string
	ManifestPath  string
	LoadfilePaths []string
	AuditPaths    []string
	Records       int64
	Anomalies     int64
	Metrics       metrics.Snapshot
}

// EffectiveConcurrency resolves the producer parallelism for a request.
// EML generation with text or attachment siblings is downgraded to a
// single producer: sibling entries must land adjacent to their parent in
// the archive, and only one in-flight item guarantees that.
func EffectiveConcurrency(req *types.GenerationRequest) int {
	if req.FileType == types.FileTypeEML && (req.WithText || req.WithAttachments) {
		return 1
	}
	return req.Concurrency
}

// Run executes one generation run end to end: validate, generate and
// archive concurrently, then serialize load files and audit documents from
// the collected rows.
//
// All configuration errors — request validation and chaos setup — surface
// before the first byte is generated. A worker failure aborts the whole
// run; partially written output files are left for inspection.
func (r *Runner) Run(ctx context.Context, req *types.GenerationRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.RunID == "" {
		req.RunID = uuid.New().String()
	}

	builder, err := content.NewBuilder(req.FileType)
	if err != nil {
		return nil, err
	}
	engines, err := r.buildEngines(req)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	conc := EffectiveConcurrency(req)
	if conc != req.Concurrency {
		r.Logger.Info("concurrency downgraded to preserve archive entry ordering", map[string]any{
			"requested": req.Concurrency,
			"effective": conc,
		})
	}

	rows, result, err := r.generate(ctx, req, builder, conc)
	if err != nil {
		return nil, err
	}

	if err := r.writeLoadfiles(req, rows, engines, result); err != nil {
		return nil, err
	}

	result.RunID = req.RunID
	result.Records = int64(len(rows))
	result.Metrics = r.Metrics.Snapshot()
	result.Anomalies = result.Metrics.AnomaliesInjected

	r.Logger.Info("run complete", map[string]any{
		"records":   result.Records,
		"anomalies": result.Anomalies,
	})
	return result, nil
}

// buildEngines constructs one chaos engine per corruptible format before
// generation starts, so bad chaos configuration is fatal up front. CSV is
// never a corruption target.
func (r *Runner) buildEngines(req *types.GenerationRequest) (map[types.OutputFormat]*chaos.Engine, error) {
	if req.Chaos == nil {
		return nil, nil
	}

	engines := make(map[types.OutputFormat]*chaos.Engine)
	for _, format := range req.Formats {
		if format == types.FormatCSV {
			continue
		}
		e, err := chaos.New(chaos.Config{
			TotalLines:      loadfile.LineCount(format, req.FileCount),
			Amount:          req.Chaos.Amount,
			Types:           req.Chaos.Types,
			Format:          format,
			ColumnDelimiter: req.ColumnDelimiter,
			QuoteDelimiter:  req.QuoteDelimiter,
			Encoding:        req.Encoding,
			Seed:            req.Chaos.Seed,
			Logger:          r.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("chaos configuration for %s: %w", format, err)
		}
		engines[format] = e
	}
	return engines, nil
}

// generate runs the producer pool against the single consumer and returns
// the collected rows in index order.
func (r *Runner) generate(ctx context.Context, req *types.GenerationRequest, builder content.Builder, conc int) ([]types.FileData, *Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := &Result{}
	cons := &consumer{metrics: r.Metrics, logger: r.Logger}

	var closers []func() error
	if !req.LoadfileOnly {
		archivePath := filepath.Join(r.OutputDir, req.RunID+".zip")
		af, err := os.Create(archivePath)
		if err != nil {
			return nil, nil, fmt.Errorf("create archive: %w", err)
		}
		zw := zip.NewWriter(af)

		manifestPath := filepath.Join(r.OutputDir, req.RunID+".manifest")
		mf, err := os.Create(manifestPath)
		if err != nil {
			iox.DiscardClose(af)
			return nil, nil, fmt.Errorf("create manifest: %w", err)
		}

		cons.zw = zw
		cons.man = manifest.NewWriter(mf)
		result.ArchivePath = archivePath
		result.ManifestPath = manifestPath
		closers = []func() error{zw.Close, af.Close, mf.Close}
	}

	pool := &producerPool{
		req:     req,
		workers: conc,
		source:  NewWorkSource(req),
		builder: builder,
		arena:   r.Arena,
		metrics: r.Metrics,
		logger:  r.Logger,
		target:  perFileTarget(req),
	}

	// The queue bound is the backpressure contract: producers block once
	// twice the worker count is in flight.
	out := make(chan types.FileData, 2*conc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- pool.run(ctx, out)
	}()

	rows, consErr := cons.consume(req, out)
	if consErr != nil {
		// Unblock producers and release whatever is still in flight.
		cancel()
		for fd := range out {
			if fd.Release != nil {
				fd.Release()
			}
		}
	}
	prodErr := <-errCh

	var closeErr error
	for _, c := range closers {
		if err := c(); err != nil && closeErr == nil {
			closeErr = fmt.Errorf("finalize archive: %w", err)
		}
	}

	switch {
	case prodErr != nil:
		return nil, nil, fmt.Errorf("generation aborted: %w", prodErr)
	case consErr != nil:
		return nil, nil, fmt.Errorf("archive write failed: %w", consErr)
	case closeErr != nil:
		return nil, nil, closeErr
	}
	return rows, result, nil
}

// writeLoadfiles serializes one load file plus its audit document per
// requested format.
func (r *Runner) writeLoadfiles(req *types.GenerationRequest, rows []types.FileData, engines map[types.OutputFormat]*chaos.Engine, result *Result) error {
	var anomalyTotal int64

	for _, format := range req.Formats {
		engine := engines[format]

		var intercept loadfile.Interceptor
		if engine != nil {
			intercept = engine
		}
		w, err := loadfile.WriterFor(format, intercept)
		if err != nil {
			return err
		}

		path := filepath.Join(r.OutputDir, fmt.Sprintf("%s.%s", req.RunID, format))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create load file: %w", err)
		}
		cw := &iox.CountingWriter{W: f}
		writeErr := w.Write(cw, req, rows)
		closeErr := f.Close()
		if writeErr != nil {
			return fmt.Errorf("write %s load file: %w", format, writeErr)
		}
		if closeErr != nil {
			return fmt.Errorf("close %s load file: %w", format, closeErr)
		}

		lineCount := loadfile.LineCount(format, int64(len(rows)))
		r.Metrics.AddRowsWritten(int64(len(rows)))
		r.Metrics.AddLinesWritten(lineCount)
		r.Logger.Debug("load file written", map[string]any{
			"format": string(format),
			"bytes":  cw.Bytes,
		})

		doc := audit.NewDocument(req, format)
		doc.RecordCount = int64(len(rows))
		doc.LineCount = lineCount
		if engine != nil {
			anomalies := engine.Anomalies()
			anomalyTotal += int64(len(anomalies))
			doc.Chaos = &audit.Chaos{
				Amount:       engine.Amount(),
				EnabledTypes: engine.EnabledTypes(),
				Seed:         req.Chaos.Seed,
				AnomalyCount: len(anomalies),
				Anomalies:    anomalies,
			}
		}
		auditPath := path + ".audit.yaml"
		if err := r.writeAudit(auditPath, doc); err != nil {
			return err
		}

		result.LoadfilePaths = append(result.LoadfilePaths, path)
		result.AuditPaths = append(result.AuditPaths, auditPath)
	}

	r.Metrics.AbsorbAnomalyCount(anomalyTotal)
	return nil
}

func (r *Runner) writeAudit(path string, doc audit.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create audit document: %w", err)
	}
	if err := audit.Write(f, doc); err != nil {
		iox.DiscardClose(f)
		return err
	}
	return f.Close()
}
