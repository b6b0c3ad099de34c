package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractOutages(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    *Outage
		reason  string
	}{
		{
			name:    "tower light with height",
			message: "!RDU 10/123 RDU OBST TOWER LGT (ASR 1234567) 354736N0785212W (3.2NM N RDU) 1549FT (1200FT AGL) U/S",
			want:    &Outage{Lat: 35.793333, Lon: -78.87, AGL: "1200"},
		},
		{
			name:    "no height token",
			message: "obst tower lgt 354736N0785212W out of service",
			want:    &Outage{Lat: 35.793333, Lon: -78.87, AGL: Unknown},
		},
		{
			name:    "space between lat and lon",
			message: "TWR LGT 354736N 0785212W 250 FT AGL UNSERVICEABLE",
			want:    &Outage{Lat: 35.793333, Lon: -78.87, AGL: "250"},
		},
		{
			name:    "no keyword",
			message: "RWY 05L/23R CLSD 354736N0785212W",
			reason:  SkipNoKeyword,
		},
		{
			name:    "keyword without coordinate",
			message: "OBST TOWER LGT (ASR 1234567) 3.2NM N RDU U/S",
			reason:  SkipNoCoordinate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ExtractOutages([]string{tt.message})
			assert.Equal(t, 1, res.Stats.Lines)
			if tt.want == nil {
				assert.Empty(t, res.Outages)
				assert.Equal(t, 1, res.Stats.Skipped[tt.reason])
				return
			}
			require.Len(t, res.Outages, 1)
			got := res.Outages[0]
			assert.InDelta(t, tt.want.Lat, got.Lat, 1e-6)
			assert.InDelta(t, tt.want.Lon, got.Lon, 1e-6)
			assert.Equal(t, tt.want.AGL, got.AGL)
		})
	}
}

func TestExtractOutages_NormalizesText(t *testing.T) {
	res := ExtractOutages([]string{"  obst\ttower lgt\n 354736N0785212W   u/s "})
	require.Len(t, res.Outages, 1)
	assert.Equal(t, "OBST TOWER LGT 354736N0785212W U/S", res.Outages[0].Text)
}

func TestExtractOutages_SouthEastHemispheres(t *testing.T) {
	res := ExtractOutages([]string{"OBST LGT 335154S1511236E U/S"})
	require.Len(t, res.Outages, 1)
	assert.InDelta(t, -33.865, res.Outages[0].Lat, 1e-6)
	assert.InDelta(t, 151.21, res.Outages[0].Lon, 1e-6)
}

func TestExtractOutages_Empty(t *testing.T) {
	res := ExtractOutages(nil)
	assert.Empty(t, res.Outages)
	assert.Zero(t, res.Stats.Lines)
}
