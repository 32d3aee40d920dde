package chaos

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// alternativeDelimiters are the replacement characters for the
// mixed-delimiters mutation.
var alternativeDelimiters = []string{",", "\t", "|"}

// mutate dispatches a targeted line to the type-specific mutator. It
// returns the mutated line, the affected column (or "N/A"), a description
// for the audit record, and whether the mutation applied. A false return
// means the line lacked the structure the mutation needs.
func (e *Engine) mutate(typ, line string) (mutated, column, description string, ok bool) {
	switch typ {
	case TypeMixedDelimiters:
		return e.mutateMixedDelimiters(line)
	case TypeQuotes:
		return e.mutateQuotes(line)
	case TypeColumns:
		return e.mutateColumns(line)
	case TypeEOL:
		return e.mutateEOL(line)
	case TypeOPTBoundary:
		return e.mutateOPTBoundary(line)
	case TypeOPTColumns:
		return e.mutateOPTColumns(line)
	case TypeOPTPageCount:
		return e.mutateOPTPageCount(line)
	default:
		return line, "", "", false
	}
}

// mutateMixedDelimiters replaces one randomly chosen column delimiter with
// a randomly chosen alternative character.
func (e *Engine) mutateMixedDelimiters(line string) (string, string, string, bool) {
	col := e.cfg.ColumnDelimiter
	positions := indexAll(line, col)
	if len(positions) == 0 {
		return line, "", "", false
	}

	pos := positions[e.rng.Intn(len(positions))]

	alts := make([]string, 0, len(alternativeDelimiters))
	for _, a := range alternativeDelimiters {
		if a != col {
			alts = append(alts, a)
		}
	}
	alt := alts[e.rng.Intn(len(alts))]

	mutated := line[:pos] + alt + line[pos+len(col):]
	column := strconv.Itoa(strings.Count(line[:pos], col) + 1)
	description := fmt.Sprintf("replaced column delimiter after column %s with %q", column, alt)
	return mutated, column, description, true
}

// mutateQuotes drops the last quote-delimiter occurrence in the line.
func (e *Engine) mutateQuotes(line string) (string, string, string, bool) {
	quote := e.cfg.QuoteDelimiter
	pos := strings.LastIndex(line, quote)
	if pos < 0 {
		return line, "", "", false
	}

	mutated := line[:pos] + line[pos+len(quote):]
	column := strconv.Itoa(strings.Count(line[:pos], e.cfg.ColumnDelimiter) + 1)
	description := "dropped last quote delimiter"
	return mutated, column, description, true
}

// mutateColumns breaks the expected column count by one in either
// direction: 50/50 insert an extra delimiter near the midpoint or remove
// the first one.
func (e *Engine) mutateColumns(line string) (string, string, string, bool) {
	col := e.cfg.ColumnDelimiter

	if e.rng.Intn(2) == 0 {
		mid := runeAligned(line, len(line)/2)
		mutated := line[:mid] + col + line[mid:]
		return mutated, "N/A", "inserted extra column delimiter near line midpoint", true
	}

	pos := strings.Index(line, col)
	if pos < 0 {
		return line, "", "", false
	}
	mutated := line[:pos] + line[pos+len(col):]
	return mutated, "1", "removed first column delimiter", true
}

// mutateEOL inserts a raw, unescaped CRLF inside the first quoted field;
// with no quoted field it falls back to the line midpoint.
func (e *Engine) mutateEOL(line string) (string, string, string, bool) {
	quote := e.cfg.QuoteDelimiter
	if quote != "" {
		open := strings.Index(line, quote)
		if open >= 0 {
			rest := line[open+len(quote):]
			closing := strings.Index(rest, quote)
			if closing > 0 {
				at := runeAligned(line, open+len(quote)+closing/2)
				mutated := line[:at] + "\r\n" + line[at:]
				column := strconv.Itoa(strings.Count(line[:open], e.cfg.ColumnDelimiter) + 1)
				return mutated, column, "inserted raw CRLF inside quoted field", true
			}
		}
	}

	at := runeAligned(line, len(line)/2)
	mutated := line[:at] + "\r\n" + line[at:]
	return mutated, "N/A", "inserted raw CRLF near line midpoint", true
}

// mutateOPTBoundary flips the 4th comma-separated field (the
// document-boundary flag) between "Y" and empty.
func (e *Engine) mutateOPTBoundary(line string) (string, string, string, bool) {
	fields := strings.Split(line, ",")
	if len(fields) < 4 {
		return line, "", "", false
	}

	var description string
	if fields[3] == "Y" {
		fields[3] = ""
		description = "cleared document-boundary flag"
	} else {
		fields[3] = "Y"
		description = "set spurious document-boundary flag"
	}
	return strings.Join(fields, ","), "4", description, true
}

// mutateOPTColumns adds or removes one comma (50/50), breaking the fixed
// 7-field/6-comma contract in either direction.
func (e *Engine) mutateOPTColumns(line string) (string, string, string, bool) {
	if e.rng.Intn(2) == 0 {
		mid := runeAligned(line, len(line)/2)
		mutated := line[:mid] + "," + line[mid:]
		return mutated, "N/A", "inserted extra comma near line midpoint", true
	}

	pos := strings.Index(line, ",")
	if pos < 0 {
		return line, "", "", false
	}
	mutated := line[:pos] + line[pos+1:]
	return mutated, "N/A", "removed first comma", true
}

// mutateOPTPageCount replaces the final comma-separated field with a
// non-numeric or negative value (50/50).
func (e *Engine) mutateOPTPageCount(line string) (string, string, string, bool) {
	last := strings.LastIndex(line, ",")
	if last < 0 {
		return line, "", "", false
	}

	replacement := "ABC"
	if e.rng.Intn(2) == 0 {
		replacement = "-1"
	}
	mutated := line[:last+1] + replacement
	column := strconv.Itoa(strings.Count(line, ",") + 1)
	description := fmt.Sprintf("replaced page count with invalid value %q", replacement)
	return mutated, column, description, true
}

// indexAll returns the byte offsets of every non-overlapping occurrence of
// sep in s.
func indexAll(s, sep string) []int {
	var out []int
	offset := 0
	for {
		i := strings.Index(s[offset:], sep)
		if i < 0 {
			return out
		}
		out = append(out, offset+i)
		offset += i + len(sep)
	}
}

// runeAligned moves a byte offset left until it falls on a rune boundary,
// so splicing never produces invalid UTF-8 that the output encoder would
// reject.
func runeAligned(s string, at int) int {
	if at > len(s) {
		at = len(s)
	}
	for at > 0 && at < len(s) && !utf8.RuneStart(s[at]) {
		at--
	}
	return at
}
