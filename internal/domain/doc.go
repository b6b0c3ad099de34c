// Package domain decodes FAA aeronautical data files into obstacle,
// airport and light-outage records.
//
// # Data Sources
//
// Digital Obstacle File (DOF): a fixed-width register of man-made
// obstacles, published every 56 days at
// https://www.faa.gov/air_traffic/flight_info/aeronav/digital_products/dof/
// as a ZIP holding one .DAT file. NASR 28-day subscription: a ZIP whose
// APT.txt lists landing facilities, one record type per line. NOTAM
// bulletins: free text retrieved from the FAA NOTAM search service.
//
// # DOF Conventions
//
// Header lines precede the records:
//
//	  CURRENCY DATE = 10/05/25
//	OAS        V CO ST  CITY  ...
//	-------------------------------- ...
//
// The currency date is lifted into metadata; the header, the column
// captions (OAS...), the dashed separator and any line starting with a
// space never produce records. Record columns (0-indexed, end exclusive):
//
//	[0,9)   OAS number "SS-NNNNNN"   [15,17) state
//	[18,34) city                     [35,47) latitude  "DD MM SS.ssH"
//	[48,61) longitude "DDD MM SS.ssH" [83,88) height AGL, feet
//
// Heights must be all digits and at least the reportable minimum
// (200 ft by default). DOF coordinates keep full float precision.
//
// # NASR APT Conventions
//
// Only lines starting with "APT" describe facilities; RWY, ATT, RMK and
// other record types share the file and are ignored. Columns:
//
//	[27,31)   location identifier   [133,183) official facility name
//	[523,538) latitude  "DD-MM-SS.ssssH"
//	[550,565) longitude "DDD-MM-SS.ssssH"
//
// Coordinates are rounded to 6 decimal places. Packed "DDMMSS.ssH" and
// bare decimal forms are also accepted. The file is Latin-1 encoded.
//
// Both layouts are data (see [Layout]) so a cycle that shifts columns can
// be handled with an override file instead of a code change.
//
// # NOTAM Conventions
//
// Outage NOTAMs carry a packed position and usually a height:
//
//	OBST TOWER LGT (ASR 1234567) 354736N0785212W (3.2NM N RDU)
//	1549FT (1200FT AGL) U/S
//
// Extraction is regex-only and low confidence. A missing height becomes
// [Unknown].
//
// # Cycles
//
// NASR publishes on the 28-day AIRAC schedule. [CycleDate] derives the
// effective date from a known anchor; the date names the NASR artifact
// and fills apt_date in metadata.
package domain
