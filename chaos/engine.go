// Package chaos deliberately corrupts a configured subset of load-file
// lines and bytes with structurally realistic defects, to stress-test
// downstream parsers.
//
// An Engine is single-use: construct it with the total line count, let the
// load-file writer drive it through the loadfile.Interceptor methods, then
// read the anomaly audit trail. All engine state is confined to the single
// goroutine driving load-file serialization.
package chaos

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/haybale/chaff/log"
	"github.com/haybale/chaff/types"
)

// Anomaly catalog tags. The DAT and OPT catalogs are disjoint.
const (
	TypeMixedDelimiters = "mixed-delimiters"
	TypeQuotes          = "quotes"
	TypeColumns         = "columns"
	TypeEOL             = "eol"
	TypeEncoding        = "encoding"

	TypeOPTBoundary  = "opt-boundary"
	TypeOPTColumns   = "opt-columns"
	TypeOPTPageCount = "opt-pagecount"
)

var (
	datCatalog = []string{TypeMixedDelimiters, TypeQuotes, TypeColumns, TypeEOL, TypeEncoding}
	optCatalog = []string{TypeOPTBoundary, TypeOPTColumns, TypeOPTPageCount}
)

// Configuration sentinel errors, surfaced before any generation starts.
var (
	ErrInvalidTotalLines  = errors.New("total line count must be at least 1")
	ErrInvalidAmount      = errors.New("invalid chaos amount")
	ErrInvalidAnomalyType = errors.New("invalid anomaly type for format")
	ErrNoEnabledTypes     = errors.New("no anomaly types enabled")
)

// DefaultAmount is the corruption amount used when none is configured.
const DefaultAmount = "1%"

// targetRetryFactor bounds rejection sampling: selection gives up after
// count*targetRetryFactor draws and proceeds with fewer targets.
const targetRetryFactor = 10

// Config configures an Engine for one run.
type Config struct {
	// TotalLines is the number of physical lines the load file will carry,
	// header included. Line 1 is an eligible target.
	TotalLines int64
	// Amount is a percentage ("2%") or an exact count ("40"). Empty means
	// DefaultAmount.
	Amount string
	// Types restricts the catalog; empty enables every type valid for
	// Format.
	Types []string
	// Format selects the anomaly catalog (DAT or OPT).
	Format types.OutputFormat
	// ColumnDelimiter and QuoteDelimiter describe the line structure the
	// mutators operate on. An empty QuoteDelimiter force-disables the
	// quotes type.
	ColumnDelimiter string
	QuoteDelimiter  string
	// Encoding selects the invalid byte sequences for boundary injection.
	Encoding types.Encoding
	// Seed makes target selection and every mutation reproducible.
	Seed *int64
	// Logger is optional; nil emits nothing.
	Logger *log.Logger
}

// Engine pre-selects target lines at construction, mutates intercepted
// lines with a round-robin rotation over the enabled types, and accumulates
// one audit record per injected defect.
type Engine struct {
	cfg     Config
	rng     *rand.Rand
	targets map[int64]struct{}
	enabled []string

	typeIndex       int
	pendingEncoding int64 // line flagged for boundary injection; 0 = none
	anomalies       []types.Anomaly
}

// New validates the configuration, selects target lines, and returns an
// engine ready to intercept.
func New(cfg Config) (*Engine, error) {
	if cfg.TotalLines < 1 {
		return nil, ErrInvalidTotalLines
	}
	if cfg.ColumnDelimiter == "" {
		cfg.ColumnDelimiter = types.DefaultColumnDelimiter
	}
	if cfg.Amount == "" {
		cfg.Amount = DefaultAmount
	}

	count, err := parseAmount(cfg.Amount, cfg.TotalLines)
	if err != nil {
		return nil, err
	}

	enabled, err := enabledTypes(cfg)
	if err != nil {
		return nil, err
	}

	var seed int64
	if cfg.Seed != nil {
		seed = *cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(seed)),
		enabled: enabled,
	}
	e.selectTargets(count)

	if cfg.Logger != nil {
		cfg.Logger.Info("chaos engine armed", map[string]any{
			"total_lines":   cfg.TotalLines,
			"target_count":  len(e.targets),
			"enabled_types": enabled,
			"seeded":        cfg.Seed != nil,
		})
	}
	return e, nil
}

// parseAmount resolves an amount string to a target line count. Percentages
// round up with a minimum of 1; exact counts are capped at totalLines.
func parseAmount(amount string, totalLines int64) (int64, error) {
	if amount == "" {
		amount = DefaultAmount
	}

	if pct, ok := strings.CutSuffix(amount, "%"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(pct), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
		}
		if n <= 0 || n > 100 {
			return 0, fmt.Errorf("%w: percentage out of (0, 100]: %q", ErrInvalidAmount, amount)
		}
		count := (totalLines*n + 99) / 100
		if count < 1 {
			count = 1
		}
		return count, nil
	}

	n, err := strconv.ParseInt(strings.TrimSpace(amount), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: count must be positive: %q", ErrInvalidAmount, amount)
	}
	if n > totalLines {
		n = totalLines
	}
	return n, nil
}

// enabledTypes intersects the requested type filter with the catalog for
// the active format, preserving catalog order so rotation is deterministic.
func enabledTypes(cfg Config) ([]string, error) {
	catalog := datCatalog
	if cfg.Format == types.FormatOPT {
		catalog = optCatalog
	}

	requested := make(map[string]bool, len(cfg.Types))
	for _, t := range cfg.Types {
		valid := false
		for _, c := range catalog {
			if t == c {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("%w %s: %q", ErrInvalidAnomalyType, cfg.Format, t)
		}
		requested[t] = true
	}

	var enabled []string
	for _, c := range catalog {
		if len(requested) > 0 && !requested[c] {
			continue
		}
		if c == TypeQuotes && cfg.QuoteDelimiter == "" {
			// Nothing to drop without a quote delimiter.
			continue
		}
		enabled = append(enabled, c)
	}
	if len(enabled) == 0 {
		return nil, ErrNoEnabledTypes
	}
	return enabled, nil
}

// selectTargets samples count distinct 1-based line numbers by rejection
// sampling with a bounded retry budget; on exhaustion the engine proceeds
// with fewer targets rather than hanging.
func (e *Engine) selectTargets(count int64) {
	e.targets = make(map[int64]struct{}, count)
	budget := count * targetRetryFactor
	for attempts := int64(0); int64(len(e.targets)) < count && attempts < budget; attempts++ {
		line := e.rng.Int63n(e.cfg.TotalLines) + 1
		e.targets[line] = struct{}{}
	}
}

// Targeted reports whether a line was pre-selected for corruption.
func (e *Engine) Targeted(line int64) bool {
	_, ok := e.targets[line]
	return ok
}

// TargetCount returns the number of pre-selected lines.
func (e *Engine) TargetCount() int {
	return len(e.targets)
}

// Amount returns the effective corruption amount, defaults applied.
func (e *Engine) Amount() string {
	return e.cfg.Amount
}

// EnabledTypes returns a copy of the active anomaly types in rotation order.
func (e *Engine) EnabledTypes() []string {
	out := make([]string, len(e.enabled))
	copy(out, e.enabled)
	return out
}

// InterceptLine implements loadfile.Interceptor. Untargeted lines pass
// through unchanged; targeted lines are mutated by the next anomaly type in
// the rotation. The encoding type mutates nothing here — it flags the line
// for boundary injection instead.
func (e *Engine) InterceptLine(lineNumber int64, recordID, line string) string {
	if !e.Targeted(lineNumber) {
		return line
	}

	typ := e.enabled[e.typeIndex%len(e.enabled)]
	e.typeIndex++

	if typ == TypeEncoding {
		e.pendingEncoding = lineNumber
		return line
	}

	mutated, column, description, ok := e.mutate(typ, line)
	if !ok {
		if e.cfg.Logger != nil {
			e.cfg.Logger.Warn("anomaly not applicable", map[string]any{
				"line": lineNumber,
				"type": typ,
			})
		}
		return line
	}

	e.anomalies = append(e.anomalies, types.Anomaly{
		LineNumber:  strconv.FormatInt(lineNumber, 10),
		RecordID:    recordID,
		Column:      column,
		ErrorType:   typ,
		Description: description,
	})
	return mutated
}

// BoundaryBytes implements loadfile.Interceptor. When the line just written
// was flagged for an encoding anomaly and another line follows, it returns
// invalid bytes to inject strictly between the two lines.
func (e *Engine) BoundaryBytes(prev, next int64) []byte {
	if e.pendingEncoding != prev {
		return nil
	}
	e.pendingEncoding = 0

	if next > e.cfg.TotalLines {
		// No following line; there is no boundary to corrupt.
		return nil
	}

	b, description := invalidBytes(e.cfg.Encoding, e.rng)
	e.anomalies = append(e.anomalies, types.Anomaly{
		LineNumber:  fmt.Sprintf("Boundary %d-%d", prev, next),
		RecordID:    "N/A",
		Column:      "N/A",
		ErrorType:   TypeEncoding,
		Description: description,
	})
	return b
}

// Anomalies returns a copy of the audit trail accumulated so far. Read it
// after generation completes.
func (e *Engine) Anomalies() []types.Anomaly {
	out := make([]types.Anomaly, len(e.anomalies))
	copy(out, e.anomalies)
	return out
}

// Verify Engine satisfies the interceptor contract without importing
// loadfile (the dependency points the other way).
var _ interface {
	InterceptLine(int64, string, string) string
	BoundaryBytes(int64, int64) []byte
} = (*Engine)(nil)
