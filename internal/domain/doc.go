// Package domain models the retrieval parameters of a flex_extract run.
//
// # Control File
//
// A run directory carries one control file (conventionally CONTROL_<suffix>)
// holding one directive per line:
//
//	NAME value
//
// Names are case-insensitive and written in upper case. Values are stored
// verbatim; list-like values are joined by "/" (NUMBER, LEVELIST) or by a
// single space (TYPE, TIME, STEP). Blank lines are skipped. There are no
// comments and no quoting.
//
// # Derived Directives
//
// Area:
//
//	UPPER/LOWER are the north/south bounds and LEFT/RIGHT the west/east
//	bounds, in degrees. When a grid spacing is requested the box is snapped
//	outward onto a global grid starting at -180/-90 and GRID is set.
//
// Dates and steps:
//
//	START_DATE and END_DATE are yyyymmdd. TYPE, TIME and STEP are parallel
//	space-separated lists with one entry per timestep. The regime is picked
//	from CLASS and STREAM:
//
//	  CLASS contains "EA" (reanalysis): every step is an analysis (AN) at its
//	  own hour, STEP 00.
//	  STREAM contains "ENFO" (ensemble): every step is a perturbed forecast
//	  (PF) from a single base time, STEP is the lead in hours.
//	  Otherwise (operational): TIME is the 00/12 run preceding the step, STEP
//	  is the hours since that run, TYPE is AN at the run and FC after it.
//
// Ensemble:
//
//	NUMBER lists nine distinct members out of 1..50 joined by "/". LEVEL,
//	LEVELIST, RESOL, FORMAT and GAUSS are fixed alongside it.
//
// # Request Manifest
//
// The preparation step writes a CSV manifest with one MARS request per row.
// Its "marsclass" column is the MARS "class" keyword, and its
// "request_number" column is bookkeeping that MARS rejects. See
// package manifest for the parsing rules.
package domain
