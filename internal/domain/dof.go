package domain

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// CurrencyDateMarker opens the DOF header line carrying the cycle date.
	CurrencyDateMarker = "  CURRENCY DATE ="

	// DefaultMinAGL is the lowest height, in feet, worth reporting.
	DefaultMinAGL = 200
)

// DOFLayout returns the default column contract for DOF.DAT.
func DOFLayout() Layout {
	return Layout{
		Name:         "dof",
		MinLength:    99, // 100 with the line terminator
		SkipPrefixes: []string{"CUR", "-", "OAS", " "},
		Fields: map[string]Field{
			"id":    {0, 9},
			"state": {15, 17},
			"city":  {18, 34},
			"lat":   {35, 47},
			"lon":   {48, 61},
			"agl":   {83, 88},
		},
		Required: map[string]FieldCheck{
			"agl": IsDigits,
		},
	}
}

// DOFOptions tunes obstacle extraction.
type DOFOptions struct {
	Layout Layout
	MinAGL int
}

// DefaultDOFOptions returns the stock layout and height threshold.
func DefaultDOFOptions() DOFOptions {
	return DOFOptions{Layout: DOFLayout(), MinAGL: DefaultMinAGL}
}

// ObstacleResult is the outcome of one DOF extraction.
type ObstacleResult struct {
	Obstacles    []Obstacle
	CurrencyDate string
	Stats        ExtractStats
}

// ExtractObstacles decodes a DOF text stream. Records come back in file
// order without deduplication. A malformed line drops only that line; the
// returned error is non-nil only when reading the stream itself fails, in
// which case the partial result must not be trusted.
func ExtractObstacles(r io.Reader, opts DOFOptions) (ObstacleResult, error) {
	minAGL := opts.MinAGL
	if minAGL < 1 {
		minAGL = 1
	}
	res := ObstacleResult{CurrencyDate: Unknown, Stats: newStats()}

	err := scanLines(r, func(line string) {
		res.Stats.Lines++

		if strings.HasPrefix(line, CurrencyDateMarker) {
			if _, date, ok := strings.Cut(line, "="); ok {
				if date = strings.TrimSpace(date); date != "" {
					res.CurrencyDate = date
				}
			}
			res.Stats.skip(SkipHeader)
			return
		}

		o, reason := decodeObstacle(opts.Layout, line, minAGL)
		if reason != "" {
			res.Stats.skip(reason)
			return
		}
		res.Obstacles = append(res.Obstacles, o)
	})
	res.Stats.Records = len(res.Obstacles)
	if err != nil {
		return res, fmt.Errorf("read dof stream: %w", err)
	}
	return res, nil
}

// decodeObstacle returns the record or the reason it was skipped.
func decodeObstacle(layout Layout, line string, minAGL int) (Obstacle, string) {
	row, err := layout.Decode(line)
	if err != nil {
		return Obstacle{}, skipReason(err)
	}

	agl, err := strconv.Atoi(row["agl"])
	if err != nil {
		return Obstacle{}, SkipInvalidField
	}
	if agl < minAGL {
		return Obstacle{}, SkipBelowThreshold
	}

	lat, err := ParseDOFCoordinate(row["lat"])
	if err != nil {
		return Obstacle{}, SkipBadCoordinate
	}
	lon, err := ParseDOFCoordinate(row["lon"])
	if err != nil {
		return Obstacle{}, SkipBadCoordinate
	}

	return Obstacle{
		ID:    row["id"],
		State: row["state"],
		City:  row["city"],
		Lat:   lat,
		Lon:   lon,
		AGL:   agl,
	}, ""
}
