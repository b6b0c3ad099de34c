package domain

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrCoordinate reports a DOF coordinate whose numeric tokens do not parse.
var ErrCoordinate = errors.New("malformed coordinate")

// packedDMSRe matches NASR coordinates written without separators,
// e.g. "355213.00" (DDMMSS.ss) or "0785212" (DDDMMSS).
var packedDMSRe = regexp.MustCompile(`^(\d{2,3})(\d{2})(\d{2}(?:\.\d+)?)$`)

// ParseDOFCoordinate decodes a DOF "DD MM SS.ssH" string into signed
// decimal degrees at full float precision.
//
// A blank string or one that does not split into exactly three tokens
// yields 0 with no error: the coordinate is treated as absent. Tokens that
// are present but not finite numbers ("3X", "NaN", "Inf") yield
// ErrCoordinate so the caller can drop the record.
func ParseDOFCoordinate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	hemi := s[len(s)-1]
	parts := strings.Fields(s[:len(s)-1])
	if len(parts) != 3 {
		return 0, nil
	}
	v, err := dmsFromTokens(parts[0], parts[1], parts[2])
	if err != nil {
		return 0, err
	}
	return applyHemisphere(v, hemi == 'S' || hemi == 'W'), nil
}

// ParseNASRCoordinate decodes a NASR coordinate into signed decimal
// degrees rounded to 6 places. Accepted forms are "DD-MM-SS.ssssH",
// packed "DDMMSS.ssH" and a bare decimal with a hemisphere letter anywhere
// in the string. Anything unparseable yields 0. A body that already carries
// a leading minus sign keeps it and the hemisphere letter is ignored, so
// "-78.5W" is -78.5.
//
// A zero result is ambiguous: it is also the true value on the equator or
// prime meridian. Callers decide which reading applies.
func ParseNASRCoordinate(s string) float64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0
	}
	negative := strings.ContainsAny(s, "SW")
	body := strings.Map(func(r rune) rune {
		switch r {
		case 'N', 'S', 'E', 'W':
			return -1
		}
		return r
	}, s)
	body = strings.TrimSpace(body)
	if strings.HasPrefix(body, "-") {
		negative = false
	}

	var (
		v   float64
		err error
	)
	if parts := strings.Split(body, "-"); len(parts) >= 3 {
		v, err = dmsFromTokens(parts[0], parts[1], parts[2])
	} else if m := packedDMSRe.FindStringSubmatch(body); m != nil {
		v, err = dmsFromTokens(m[1], m[2], m[3])
	} else {
		v, err = strconv.ParseFloat(body, 64)
	}
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return roundTo(applyHemisphere(v, negative), 6)
}

// DMSToDecimal applies the sign rule to already-split components, as found
// in NOTAM text where the groups are fixed-width digit runs.
func DMSToDecimal(deg, min, sec float64, hemi byte) float64 {
	return applyHemisphere(deg+min/60+sec/3600, hemi == 'S' || hemi == 'W')
}

func dmsFromTokens(d, m, s string) (float64, error) {
	deg, errD := strconv.ParseFloat(strings.TrimSpace(d), 64)
	mins, errM := strconv.ParseFloat(strings.TrimSpace(m), 64)
	secs, errS := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if errD != nil || errM != nil || errS != nil {
		return 0, ErrCoordinate
	}
	v := deg + mins/60 + secs/3600
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrCoordinate
	}
	return v, nil
}

func applyHemisphere(v float64, negative bool) float64 {
	if negative {
		return -v
	}
	return v
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
