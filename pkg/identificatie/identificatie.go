// Package identificatie formats the human readable identifiers of verzoeken: VERZOEK-YYYY-NNNNNNNNNN.
package identificatie

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	Prefix         = "VERZOEK"
	sequenceDigits = 10
)

func Format(year int, sequence int64) string {
	return fmt.Sprintf("%s-%d-%0*d", Prefix, year, sequenceDigits, sequence)
}

// YearPrefix is the common prefix of every identifier generated in year.
func YearPrefix(year int) string {
	return fmt.Sprintf("%s-%d-", Prefix, year)
}

// Pattern is a POSIX regular expression matching exactly the identifiers generated for year.
func Pattern(year int) string {
	return fmt.Sprintf("^%s[0-9]{%d}$", YearPrefix(year), sequenceDigits)
}

// Sequence extracts the sequence number of a generated identifier for year.
func Sequence(identificatie string, year int) (int64, bool) {
	rest, ok := strings.CutPrefix(identificatie, YearPrefix(year))
	if !ok || len(rest) != sequenceDigits || strings.Trim(rest, "0123456789") != "" {
		return 0, false
	}
	seq, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

// Next returns the identifier following the highest existing one. Identifiers that were not
// generated for year are ignored.
func Next(year int, existing ...string) string {
	var highest int64
	for _, id := range existing {
		if seq, ok := Sequence(id, year); ok && seq > highest {
			highest = seq
		}
	}
	return Format(year, highest+1)
}
