package domain

import (
	"bufio"
	"errors"
	"io"
)

// maxLineBytes bounds a single source line. NASR lines run to ~1,500 bytes;
// anything far beyond that is corrupt input.
const maxLineBytes = 1 << 20

// Skip reasons recorded in ExtractStats.
const (
	SkipShort          = "short"
	SkipHeader         = "header"
	SkipNotCandidate   = "not_candidate"
	SkipInvalidField   = "invalid_field"
	SkipBelowThreshold = "below_threshold"
	SkipBadCoordinate  = "bad_coordinate"
	SkipZeroCoordinate = "zero_coordinate"
	SkipNoKeyword      = "no_keyword"
	SkipNoCoordinate   = "no_coordinate"
)

// ExtractStats counts what an extractor saw and why it dropped lines.
type ExtractStats struct {
	Lines   int
	Records int
	Skipped map[string]int
}

func newStats() ExtractStats {
	return ExtractStats{Skipped: make(map[string]int)}
}

func (s *ExtractStats) skip(reason string) {
	s.Skipped[reason]++
}

// TotalSkipped sums every skip reason.
func (s ExtractStats) TotalSkipped() int {
	n := 0
	for _, v := range s.Skipped {
		n += v
	}
	return n
}

// skipReason maps a decode error to its counter name.
func skipReason(err error) string {
	switch {
	case errors.Is(err, ErrShortLine):
		return SkipShort
	case errors.Is(err, ErrHeaderLine):
		return SkipHeader
	case errors.Is(err, ErrNotCandidate):
		return SkipNotCandidate
	case errors.Is(err, ErrCoordinate):
		return SkipBadCoordinate
	default:
		return SkipInvalidField
	}
}

// scanLines feeds every line of r to fn. Only a read failure is returned;
// what fn does with a line never stops the scan.
func scanLines(r io.Reader, fn func(line string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		fn(sc.Text())
	}
	return sc.Err()
}
