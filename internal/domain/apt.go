package domain

import (
	"fmt"
	"io"
)

// APTLayout returns the default column contract for NASR APT.txt
// facility records. It shares nothing with DOFLayout.
func APTLayout() Layout {
	return Layout{
		Name:         "apt",
		MinLength:    3,
		RecordPrefix: "APT",
		Fields: map[string]Field{
			"id":   {27, 31},
			"name": {133, 183},
			"lat":  {523, 538},
			"lon":  {550, 565},
		},
		Required: map[string]FieldCheck{
			"id":  NonEmpty,
			"lat": NonEmpty,
			"lon": NonEmpty,
		},
	}
}

// APTOptions tunes airport extraction.
type APTOptions struct {
	Layout Layout
}

// DefaultAPTOptions returns the stock layout.
func DefaultAPTOptions() APTOptions {
	return APTOptions{Layout: APTLayout()}
}

// AirportResult is the outcome of one APT extraction.
type AirportResult struct {
	Airports map[string]Airport
	Stats    ExtractStats
}

// ExtractAirports decodes an APT text stream into identifier -> airport.
// A later line with an already-seen identifier replaces the earlier one.
//
// A decoded latitude or longitude of exactly zero is dropped as
// unparseable, even though zero is a real position on the equator or prime
// meridian. No US facility sits there, so the failure reading wins until
// someone decides otherwise.
func ExtractAirports(r io.Reader, opts APTOptions) (AirportResult, error) {
	res := AirportResult{Airports: make(map[string]Airport), Stats: newStats()}

	err := scanLines(r, func(line string) {
		res.Stats.Lines++

		row, err := opts.Layout.Decode(line)
		if err != nil {
			res.Stats.skip(skipReason(err))
			return
		}
		lat := ParseNASRCoordinate(row["lat"])
		lon := ParseNASRCoordinate(row["lon"])
		if lat == 0 || lon == 0 {
			res.Stats.skip(SkipZeroCoordinate)
			return
		}
		res.Airports[row["id"]] = Airport{Name: row["name"], Lat: lat, Lon: lon}
	})
	res.Stats.Records = len(res.Airports)
	if err != nil {
		return res, fmt.Errorf("read apt stream: %w", err)
	}
	return res, nil
}
