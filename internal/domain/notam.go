package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// OutageKeywords mark a NOTAM as a light-outage candidate.
var OutageKeywords = []string{
	"TOWER LGT",
	"TWR LGT",
	"OBST LGT",
	"LGT OUT",
	"LIGHT OUT",
	"LGTS OUT",
	"OUT OF SERVICE",
	"UNSERVICEABLE",
	"U/S",
}

var (
	// notamCoordRe matches packed DMS latitude then longitude,
	// e.g. "354736N0785212W".
	notamCoordRe = regexp.MustCompile(`(\d{2,3})(\d{2})(\d{2})([NS])\s*(\d{2,3})(\d{2})(\d{2})([EW])`)

	// notamHeightRe matches a height above ground, e.g. "1200FT AGL".
	notamHeightRe = regexp.MustCompile(`(\d+)\s*FT\s*AGL`)
)

// OutageResult is the outcome of one NOTAM harvest.
type OutageResult struct {
	Outages []Outage
	Stats   ExtractStats
}

// ExtractOutages scans NOTAM bodies for light outages. It is best-effort:
// a message without a keyword or without a position yields nothing, and a
// missing height is reported as Unknown rather than dropping the record.
func ExtractOutages(messages []string) OutageResult {
	res := OutageResult{Stats: newStats()}
	for _, msg := range messages {
		res.Stats.Lines++
		o, reason := decodeOutage(msg)
		if reason != "" {
			res.Stats.skip(reason)
			continue
		}
		res.Outages = append(res.Outages, o)
	}
	res.Stats.Records = len(res.Outages)
	return res
}

func decodeOutage(msg string) (Outage, string) {
	text := strings.Join(strings.Fields(strings.ToUpper(msg)), " ")
	if !hasOutageKeyword(text) {
		return Outage{}, SkipNoKeyword
	}

	m := notamCoordRe.FindStringSubmatch(text)
	if m == nil {
		return Outage{}, SkipNoCoordinate
	}
	lat := DMSToDecimal(atof(m[1]), atof(m[2]), atof(m[3]), m[4][0])
	lon := DMSToDecimal(atof(m[5]), atof(m[6]), atof(m[7]), m[8][0])

	agl := Unknown
	if h := notamHeightRe.FindStringSubmatch(text); h != nil {
		agl = h[1]
	}

	return Outage{Lat: lat, Lon: lon, AGL: agl, Text: text}, ""
}

func hasOutageKeyword(text string) bool {
	for _, kw := range OutageKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// atof parses a regex digit group; the pattern guarantees digits.
func atof(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
