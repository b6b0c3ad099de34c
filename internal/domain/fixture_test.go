package domain

import "strings"

// goldenDOFLine is a DOF record laid out exactly on the default columns.
const goldenDOFLine = "37-012345 O US NC RALEIGH          35 47 36.00N 078 52 12.00W TOWER              1 01200 01549 2DA R   1 A 2020123"

type column struct {
	at   int
	text string
}

// fixedLine places text at character offsets in a blank line of width n.
func fixedLine(n int, cols ...column) string {
	b := []byte(strings.Repeat(" ", n))
	for _, c := range cols {
		copy(b[c.at:], c.text)
	}
	return strings.TrimRight(string(b), " ")
}

// dofLine builds a DOF record with the given height field.
func dofLine(id, agl string) string {
	return fixedLine(120,
		column{0, id},
		column{15, "NC"},
		column{18, "RALEIGH"},
		column{35, "35 47 36.00N"},
		column{48, "078 52 12.00W"},
		column{62, "TOWER"},
		column{83, agl},
		column{107, "2020123"},
	)
}

// aptLine builds an APT facility record.
func aptLine(id, name, lat, lon string) string {
	return fixedLine(600,
		column{0, "APT"},
		column{3, "16517.*A"},
		column{14, "AIRPORT"},
		column{27, id},
		column{133, name},
		column{523, lat},
		column{550, lon},
	)
}
