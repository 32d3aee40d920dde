// Package cmd defines the chaff CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/haybale/chaff/arena"
	"github.com/haybale/chaff/chaos"
	"github.com/haybale/chaff/cli/config"
	"github.com/haybale/chaff/log"
	"github.com/haybale/chaff/metrics"
	"github.com/haybale/chaff/pipeline"
	"github.com/haybale/chaff/types"
)

// Exit codes.
const (
	exitSuccess     = 0
	exitConfigError = 1
	exitRunFailure  = 2
)

// GenerateCommand returns the generate command, the only command that
// produces output.
func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a synthetic document fixture set",
		Flags: []cli.Flag{
			// Volume flags
			&cli.Int64Flag{
				Name:  "count",
				Usage: "Number of documents to generate",
			},
			&cli.IntFlag{
				Name:  "folders",
				Usage: "Number of archive folders to spread documents over",
				Value: 1,
			},
			&cli.StringFlag{
				Name:  "distribution",
				Usage: "Folder distribution: proportional, exponential, or gaussian",
				Value: "proportional",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Producer worker count",
				Value: 4,
			},
			// Content flags
			&cli.StringFlag{
				Name:  "type",
				Usage: "Document type: text, eml, or tiff",
				Value: "text",
			},
			&cli.BoolFlag{
				Name:  "with-text",
				Usage: "Emit an extracted-text sibling per document",
			},
			&cli.BoolFlag{
				Name:  "with-attachments",
				Usage: "Attach a file to each email (eml only)",
			},
			&cli.StringFlag{
				Name:  "target-size",
				Usage: "Approximate total output size (e.g. 512MB, 2GB)",
			},
			// Output flags
			&cli.StringSliceFlag{
				Name:  "format",
				Usage: "Load-file format: dat, csv, or opt (repeatable)",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Output directory",
				Value: "out",
			},
			&cli.BoolFlag{
				Name:  "loadfile-only",
				Usage: "Skip the archive; write load files only",
			},
			&cli.StringFlag{
				Name:  "column-delimiter",
				Usage: "Column delimiter for DAT output (default ASCII 20)",
			},
			&cli.StringFlag{
				Name:  "quote-delimiter",
				Usage: "Quote delimiter for DAT output; empty disables quoting",
				Value: types.DefaultQuoteDelimiter,
			},
			&cli.StringFlag{
				Name:  "encoding",
				Usage: "Load-file encoding: utf-8, utf-8-bom, utf-16le, or windows-1252",
				Value: "utf-8",
			},
			&cli.StringFlag{
				Name:  "line-ending",
				Usage: "Load-file line endings: crlf or lf",
				Value: "crlf",
			},
			// Chaos flags
			&cli.BoolFlag{
				Name:  "chaos",
				Usage: "Corrupt a subset of load-file lines",
			},
			&cli.StringFlag{
				Name:  "chaos-amount",
				Usage: "Corruption amount: a percentage (\"2%\") or a line count (\"40\")",
			},
			&cli.StringSliceFlag{
				Name:  "chaos-type",
				Usage: "Anomaly type to enable (repeatable; default: all valid for the format)",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Seed for reproducible chaos and folder assignment",
			},
			// Profile flags
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to a chaff.yaml generation profile",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress the result summary",
			},
		},
		Action: generateAction,
	}
}

func generateAction(c *cli.Context) error {
	req, outputDir, err := buildRequest(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid configuration: %v", err), exitConfigError)
	}

	logger := log.NewLogger(req.RunID, req.FileCount)
	runner := &pipeline.Runner{
		OutputDir: outputDir,
		Logger:    logger,
		Metrics:   metrics.NewCollector(req.RunID, string(req.FileType), string(req.Distribution)),
		Arena:     arena.New(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	start := time.Now()
	result, err := runner.Run(ctx, req)
	if err != nil {
		if isConfigError(err) {
			return cli.Exit(fmt.Sprintf("invalid configuration: %v", err), exitConfigError)
		}
		return cli.Exit(fmt.Sprintf("run failed: %v", err), exitRunFailure)
	}

	if !c.Bool("quiet") {
		printResult(result, time.Since(start))
	}
	return nil
}

// buildRequest merges CLI flags over the optional profile. Flags given
// explicitly always win; profile values fill the rest; flag defaults fill
// whatever remains.
func buildRequest(c *cli.Context) (*types.GenerationRequest, string, error) {
	var profile config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		profile = *loaded
	}

	pickStr := func(flag, fromProfile string) string {
		if c.IsSet(flag) || fromProfile == "" {
			return c.String(flag)
		}
		return fromProfile
	}
	pickInt := func(flag string, fromProfile int) int {
		if c.IsSet(flag) || fromProfile == 0 {
			return c.Int(flag)
		}
		return fromProfile
	}

	count := c.Int64("count")
	if !c.IsSet("count") && profile.Count != 0 {
		count = profile.Count
	}

	formats := c.StringSlice("format")
	if len(formats) == 0 {
		formats = profile.Formats
	}
	if len(formats) == 0 {
		formats = []string{string(types.FormatDAT)}
	}
	outFormats := make([]types.OutputFormat, len(formats))
	for i, f := range formats {
		outFormats[i] = types.OutputFormat(f)
	}

	targetSize := profile.TargetSize.Bytes
	if c.IsSet("target-size") {
		parsed, err := config.ParseByteSize(c.String("target-size"))
		if err != nil {
			return nil, "", err
		}
		targetSize = parsed
	}

	quoteDelim := c.String("quote-delimiter")
	if !c.IsSet("quote-delimiter") && profile.QuoteDelimiter != nil {
		quoteDelim = *profile.QuoteDelimiter
	}

	req := &types.GenerationRequest{
		RunID:           uuid.New().String(),
		FileCount:       count,
		FolderCount:     pickInt("folders", profile.Folders),
		Distribution:    types.Distribution(pickStr("distribution", profile.Distribution)),
		FileType:        types.FileType(pickStr("type", profile.Type)),
		Concurrency:     pickInt("concurrency", profile.Concurrency),
		Formats:         outFormats,
		WithText:        c.Bool("with-text") || profile.WithText,
		WithAttachments: c.Bool("with-attachments") || profile.WithAttachments,
		TargetSize:      targetSize,
		LoadfileOnly:    c.Bool("loadfile-only") || profile.LoadfileOnly,
		ColumnDelimiter: pickStr("column-delimiter", profile.ColumnDelimiter),
		QuoteDelimiter:  quoteDelim,
		Encoding:        types.Encoding(pickStr("encoding", profile.Encoding)),
		LineEnding:      types.LineEnding(pickStr("line-ending", profile.LineEnding)),
	}

	if c.Bool("chaos") || profile.Chaos != nil {
		spec := &types.ChaosSpec{}
		if profile.Chaos != nil {
			spec.Amount = profile.Chaos.Amount
			spec.Types = profile.Chaos.Types
			spec.Seed = profile.Chaos.Seed
		}
		if c.IsSet("chaos-amount") {
			spec.Amount = c.String("chaos-amount")
		}
		if c.IsSet("chaos-type") {
			spec.Types = c.StringSlice("chaos-type")
		}
		if c.IsSet("seed") {
			seed := c.Int64("seed")
			spec.Seed = &seed
		}
		req.Chaos = spec
	}

	output := pickStr("output", profile.Output)
	return req, output, nil
}

// configErrors are the sentinel errors that indicate bad configuration
// rather than a runtime failure.
var configErrors = []error{
	types.ErrInvalidFileCount,
	types.ErrInvalidFolderCount,
	types.ErrInvalidConcurrency,
	types.ErrInvalidDistribution,
	types.ErrInvalidFileType,
	types.ErrInvalidFormat,
	types.ErrInvalidEncoding,
	types.ErrInvalidLineEnding,
	types.ErrNoFormats,
	chaos.ErrInvalidTotalLines,
	chaos.ErrInvalidAmount,
	chaos.ErrInvalidAnomalyType,
	chaos.ErrNoEnabledTypes,
}

func isConfigError(err error) bool {
	for _, sentinel := range configErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func printResult(result *pipeline.Result, duration time.Duration) {
	fmt.Printf("\nrun_id=%s, records=%d, duration=%s\n",
		result.RunID, result.Records, duration.Round(time.Millisecond))

	fmt.Printf("\n=== Output ===\n")
	if result.ArchivePath != "" {
		fmt.Printf("Archive:      %s\n", result.ArchivePath)
		fmt.Printf("Manifest:     %s\n", result.ManifestPath)
	}
	for _, p := range result.LoadfilePaths {
		fmt.Printf("Load file:    %s\n", p)
	}
	for _, p := range result.AuditPaths {
		fmt.Printf("Audit:        %s\n", p)
	}

	snap := result.Metrics
	fmt.Printf("\n=== Generation Stats ===\n")
	fmt.Printf("Files Generated:  %d\n", snap.FilesGenerated)
	fmt.Printf("Pages Generated:  %d\n", snap.PagesGenerated)
	fmt.Printf("Archive Entries:  %d\n", snap.EntriesWritten)
	fmt.Printf("Bytes Written:    %d\n", snap.BytesWritten)
	fmt.Printf("Rows Written:     %d\n", snap.RowsWritten)
	fmt.Printf("Lines Written:    %d\n", snap.LinesWritten)

	if snap.PadBytes > 0 {
		fmt.Printf("\n=== Sizing ===\n")
		fmt.Printf("Pad Bytes:        %d\n", snap.PadBytes)
		fmt.Printf("Arena Rentals:    %d\n", snap.ArenaRentals)
		fmt.Printf("Arena Fallbacks:  %d\n", snap.ArenaFallbacks)
	}

	if snap.AnomaliesInjected > 0 {
		fmt.Printf("\n=== Chaos ===\n")
		fmt.Printf("Anomalies:        %d\n", snap.AnomaliesInjected)
	}
}
