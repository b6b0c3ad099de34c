package domain

import "time"

// Unknown is the sentinel for a value the source did not provide: an
// unparsed DOF currency date or a NOTAM without a height token.
const Unknown = "Unknown"

// Obstacle is one DOF register entry at or above the reportable height.
type Obstacle struct {
	ID    string  `json:"id"`
	State string  `json:"state,omitempty"`
	City  string  `json:"city"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	AGL   int     `json:"agl"` // feet above ground level
}

// Airport is one NASR landing facility keyed by location identifier.
type Airport struct {
	Name string  `json:"name,omitempty"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Outage is a light-outage candidate harvested from NOTAM free text.
// It is low-confidence data: positions and heights come from regex matches.
type Outage struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	AGL  string  `json:"agl"` // digits, or Unknown
	Text string  `json:"text"`
}

// Metadata describes the persisted snapshot. Counts reflect whichever
// dataset (fresh or retained) is actually on disk.
type Metadata struct {
	DOFDate  string `json:"dof_date"`
	APTDate  string `json:"apt_date,omitempty"`
	APTCount int    `json:"apt_count"`
	OBSCount int    `json:"obs_count"`
}

// Snapshot is what a run hands to downstream publishers.
type Snapshot struct {
	RunID       string
	GeneratedAt time.Time
	Metadata    Metadata
	Outages     []Outage
}
