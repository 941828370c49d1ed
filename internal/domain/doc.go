// Package domain models NEXRAD Level-II radar volumes and the path/time
// bookkeeping needed to turn a night of archived scans into vertical-profile
// inputs.
//
// # Data Source
//
// Raw polar volumes (pvol) come from the NEXRAD Level-II public archive on
// Amazon S3 (bucket "noaa-nexrad-level2", anonymous read). Objects are laid
// out one directory per station per day:
//
//	YYYY/MM/DD/SSSS/SSSSYYYYMMDD_HHMMSS_V06
//	e.g. 2024/12/12/KDIX/KDIX20241212_093015_V06
//
// # Filename Convention
//
// The basename is fixed-width up to the version tag:
//
//	bytes [0,4)   station identifier (ICAO, e.g. KDIX)
//	bytes [4,12)  scan date, YYYYMMDD
//	byte  12      underscore separator
//	bytes [13,19) scan time of day, HHMMSS UTC
//
// [ScanTime] extracts the HHMMSS field at that fixed offset. Keys that do not
// conform (truncated, non-digit time field, missing separator) produce an
// error; whether that excludes the object quietly or fails the run is the
// caller's policy, see [FilterByWindow].
//
// Some archive days carry trailing metadata objects whose basename ends in
// "_MDM". They are not radar volumes and must never reach the converter; the
// walker marks them invalid by exact, case-sensitive suffix match.
//
// # Mirrored Trees
//
// Downloaded volumes live under a local input root mirroring the bucket
// layout. Every valid input file maps to exactly one output path: the
// containing directory relative to the input root, re-rooted under the output
// root, with the original basename plus a fixed suffix for the derived
// vertical-profile format (".h5" by default). [MapOutput] computes the pair;
// stripping the output root and suffix and re-rooting under the input root
// recovers the original path.
//
// # Glossary
//
// A vertical profile (vp) summarizes radar-observed biological targets by
// altitude at one scan time. A vertical profile time series (vpts) orders
// them by time. The Migration Traffic Rate (MTR) integrates a vpts into a
// flux of migrating targets per unit time. All three are produced by external
// collaborators (bioRad / vol2bird, Dokter et al. 2011); this package only
// moves and names their inputs and outputs.
package domain
