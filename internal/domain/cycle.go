package domain

import "time"

// CycleLength is the NASR subscription publication interval.
const CycleLength = 28 * 24 * time.Hour

// cycleAnchor is a known NASR effective date (AIRAC 2501).
var cycleAnchor = time.Date(2025, time.January, 23, 0, 0, 0, 0, time.UTC)

// CycleDate returns the start of the 28-day cycle in effect at t.
func CycleDate(t time.Time) time.Time {
	d := t.UTC().Sub(cycleAnchor)
	n := d / CycleLength
	if d < 0 && d%CycleLength != 0 {
		n--
	}
	return cycleAnchor.Add(n * CycleLength)
}

// CycleKey formats a cycle date the way NASR names its artifacts.
func CycleKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// CurrentCycle returns the cycle in effect now, per the package clock.
func CurrentCycle() time.Time {
	return CycleDate(clock.Now())
}

// Now reports the package clock's current time.
func Now() time.Time {
	return clock.Now()
}
