// Package config handles YAML profile loading for chaff generate.
// A profile supplies defaults for generation flags; flags given on the
// command line always win.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents a chaff.yaml generation profile. Every field is
// optional.
type Config struct {
	Count           int64        `yaml:"count"`
	Folders         int          `yaml:"folders"`
	Distribution    string       `yaml:"distribution"`
	Type            string       `yaml:"type"`
	Concurrency     int          `yaml:"concurrency"`
	Formats         []string     `yaml:"formats"`
	WithText        bool         `yaml:"with_text"`
	WithAttachments bool         `yaml:"with_attachments"`
	TargetSize      ByteSize     `yaml:"target_size"`
	Output          string       `yaml:"output"`
	LoadfileOnly    bool         `yaml:"loadfile_only"`
	ColumnDelimiter string       `yaml:"column_delimiter"`
	QuoteDelimiter  *string      `yaml:"quote_delimiter"`
	Encoding        string       `yaml:"encoding"`
	LineEnding      string       `yaml:"line_ending"`
	Chaos           *ChaosConfig `yaml:"chaos,omitempty"`
}

// ChaosConfig holds chaos-mode defaults from the profile.
type ChaosConfig struct {
	Amount string   `yaml:"amount"`
	Types  []string `yaml:"types"`
	Seed   *int64   `yaml:"seed,omitempty"`
}

// ByteSize wraps an int64 byte count for YAML string parsing
// (e.g. "512MB", "2GB", or a plain byte count).
type ByteSize struct {
	Bytes int64
}

// UnmarshalYAML parses a byte-size string.
func (b *ByteSize) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := ParseByteSize(s)
	if err != nil {
		return err
	}
	b.Bytes = parsed
	return nil
}

// byteUnits maps size suffixes to multipliers, longest suffix first so
// "KB" is not matched as a bare "B".
var byteUnits = []struct {
	suffix string
	mult   int64
}{
	{"TB", 1 << 40},
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseByteSize parses strings like "512MB", "2GB", "100KB", or a plain
// byte count.
func ParseByteSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)

	mult := int64(1)
	num := upper
	for _, u := range byteUnits {
		if strings.HasSuffix(upper, u.suffix) {
			mult = u.mult
			num = strings.TrimSpace(strings.TrimSuffix(upper, u.suffix))
			break
		}
	}

	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid size %q: must not be negative", s)
	}
	return n * mult, nil
}
