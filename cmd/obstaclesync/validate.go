package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/obstacle-data-etl/internal/adapter/filestore"
	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
	"github.com/spf13/cobra"
)

var errValidationFailed = errors.New("validation failed")

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate DIR",
		Short: "Check a snapshot directory for consistency",
		Long: `Check that a snapshot directory is internally consistent: metadata counts
match the data files, coordinates are in range, and heights are positive.

Exits non-zero when any phase fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validate(cmd.OutOrStdout(), args[0])
		},
	}
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// snapshot is a snapshot directory loaded into memory.
type snapshot struct {
	metadata  domain.Metadata
	obstacles []domain.Obstacle
	airports  map[string]domain.Airport
	outages   []domain.Outage
}

func validate(out io.Writer, dir string) error {
	fmt.Fprintln(out, "=== Snapshot Validation ===")
	fmt.Fprintln(out)

	snap, err := loadSnapshot(dir)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return err
	}

	phases := []*phase{
		validateMetadata(snap),
		validateCounts(snap),
		validateObstacles(snap.obstacles),
		validateAirports(snap.airports),
		validateOutages(snap.outages),
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-24s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d obstacles, %d airports, %d outages\n",
		len(snap.obstacles), len(snap.airports), len(snap.outages))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return nil
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return errValidationFailed
}

func loadSnapshot(dir string) (snapshot, error) {
	var s snapshot
	if err := loadJSON(dir, filestore.MetadataFile, &s.metadata, true); err != nil {
		return s, err
	}
	if err := loadJSON(dir, filestore.ObstaclesFile, &s.obstacles, false); err != nil {
		return s, err
	}
	if err := loadJSON(dir, filestore.AirportsFile, &s.airports, false); err != nil {
		return s, err
	}
	if err := loadJSON(dir, filestore.NotamsFile, &s.outages, false); err != nil {
		return s, err
	}
	return s, nil
}

// loadJSON decodes dir/name into v. A missing optional file leaves v as is.
func loadJSON(dir, name string, v any, required bool) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// ── Phases ──

func validateMetadata(s snapshot) *phase {
	p := &phase{name: "Metadata"}
	if s.metadata.DOFDate == "" {
		p.errorf("dof_date is empty; want a date or %q", domain.Unknown)
	}
	if s.metadata.APTDate != "" {
		if _, err := time.Parse("2006-01-02", s.metadata.APTDate); err != nil {
			p.errorf("apt_date %q is not YYYY-MM-DD", s.metadata.APTDate)
		}
	}
	if s.metadata.OBSCount < 0 || s.metadata.APTCount < 0 {
		p.errorf("negative count: obs_count=%d apt_count=%d", s.metadata.OBSCount, s.metadata.APTCount)
	}
	return p
}

func validateCounts(s snapshot) *phase {
	p := &phase{name: "Record counts"}
	if s.metadata.OBSCount != len(s.obstacles) {
		p.errorf("obs_count=%d but obstacles.json has %d records", s.metadata.OBSCount, len(s.obstacles))
	}
	if s.metadata.APTCount != len(s.airports) {
		p.errorf("apt_count=%d but airports.json has %d records", s.metadata.APTCount, len(s.airports))
	}
	return p
}

func validateObstacles(obstacles []domain.Obstacle) *phase {
	p := &phase{name: "Obstacles"}
	for i, o := range obstacles {
		if o.ID == "" {
			p.errorf("obstacle %d: empty id", i)
		}
		if o.AGL < 1 {
			p.errorf("obstacle %s: agl %d is not positive", o.ID, o.AGL)
		}
		checkPosition(p, "obstacle "+o.ID, o.Lat, o.Lon)
	}
	return p
}

func validateAirports(airports map[string]domain.Airport) *phase {
	p := &phase{name: "Airports"}
	for id, a := range airports {
		if id == "" {
			p.errorf("airport with empty identifier")
		}
		if a.Lat == 0 || a.Lon == 0 {
			p.errorf("airport %s: zero coordinate (%v, %v)", id, a.Lat, a.Lon)
		}
		checkPosition(p, "airport "+id, a.Lat, a.Lon)
	}
	return p
}

func validateOutages(outages []domain.Outage) *phase {
	p := &phase{name: "NOTAM outages"}
	for i, o := range outages {
		if o.Text == "" {
			p.errorf("outage %d: empty text", i)
		}
		if o.AGL != domain.Unknown && !domain.IsDigits(o.AGL) {
			p.errorf("outage %d: agl %q is neither digits nor %q", i, o.AGL, domain.Unknown)
		}
		checkPosition(p, fmt.Sprintf("outage %d", i), o.Lat, o.Lon)
	}
	return p
}

func checkPosition(p *phase, what string, lat, lon float64) {
	if lat < -90 || lat > 90 {
		p.errorf("%s: lat %v out of range", what, lat)
	}
	if lon < -180 || lon > 180 {
		p.errorf("%s: lon %v out of range", what, lon)
	}
}
