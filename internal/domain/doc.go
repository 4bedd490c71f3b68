// Package domain models river catchment monitoring data: the geographic
// entities (catchments and measurement sites) and the readings they produce.
//
// # Data Source
//
// Readings originate from field logger CSV exports published by the upstream
// collector service. The collector parses each export on a cron schedule,
// injects a "Measurement" field, and publishes each row as flat JSON to the
// Kafka source topic.
//
// # Geographic Model
//
// A Catchment is the drainage area of a river, optionally bounded by a
// polygon loaded from a boundary file (ESRI Shapefile, GeoJSON, or WKT).
// A Site is a fixed monitoring installation, optionally positioned by a
// WGS 84 (EPSG:4326) longitude/latitude pair. Positions and boundaries use
// [orb] geometries with longitude first, matching GeoJSON axis order.
//
// A bounded catchment admits only sites whose position falls inside its
// area; an unbounded catchment admits every site. Admission never fails
// loudly: an out-of-bounds or duplicate AddSite is a silent no-op,
// observable only through Sites afterwards. This mirrors how field teams
// work: loggers outside the study boundary are simply not part of the
// campaign, they are not an error.
//
// # Reading Conventions
//
// Time format:
//
//	HHMM in 24-hour notation, e.g. "1510" = 15:10 UTC.
//	Three-digit values are zero-padded: "930" → "0930".
//	The date portion comes from the Kafka message timestamp (set by the
//	collector from the export filename date).
//
// Measurement types and default units:
//
//	rainfall     mm    accumulated depth over the logging interval
//	river_level  m     stage height above the gauge datum
//	water_temp   degC  spot water temperature
//
// Rainfall intensity classes follow the WMO guidance thresholds, applied to
// the depth logged per hour:
//
//	<2.5 mm slight | <10 mm moderate | <50 mm heavy | ≥50 mm violent
//
// Level and temperature readings carry no intensity class.
//
// # ID Generation
//
// Reading IDs are deterministic SHA-256 hashes of site|measurement|time|value.
// This enables idempotent downstream upserts and replay safety without
// distributed coordination. See [generateID].
package domain
