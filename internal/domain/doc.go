// Package domain models earthquake catalog data published by the Central
// Weather Administration (CWA) and the occurrence-probability analysis
// derived from it.
//
// # Data Source
//
// The agency publishes two catalogs through its open-data file API: a
// current-year report of significant felt earthquakes (XML) and a historical
// catalog (a ZIP archive holding one XML document). The cwa adapter decodes
// both into a RawCatalog element tree in which every child element is a list,
// usually a singleton:
//
//	cwaopendata
//	  Dataset
//	    Earthquake            (current feed, one per report)
//	      EarthquakeInfo
//	        OriginTime        "2024-04-03T07:58:09+08:00"
//	        Epicenter
//	          Location        "花蓮縣政府南南東方 25.0 公里 (位於臺灣東部海域)"
//	      Intensity
//	        MaxIntensity      "6強"
//	    Catalog
//	      Earthquake          (historical feed, flat OriginTime/Location/MaxIntensity)
//
// # Normalization
//
// Intensity labels are opaque and kept verbatim. Nodes without one are not
// events and are dropped silently. Nodes missing a location or origin time,
// or with an unparseable time, are dropped with a [SkipReason] so callers can
// log and count them.
//
// Regions: the traditional glyph 臺 is folded to 台, then the first three
// characters identify the county or city, e.g. "臺東縣成功鎮" → "台東縣".
// A lookup table maps pre-2010 county names to their successor
// municipalities ("台北縣" → "新北市"). Unknown prefixes such as offshore
// descriptions fall back to the raw three characters. See [CanonicalRegion].
//
// Origin times: RFC 3339 or "2006-01-02 15:04:05" in UTC+8.
//
// # Estimation
//
// [Estimate] treats each (region, intensity) pair as a homogeneous Poisson
// process. The observation window runs from the earliest event to the run
// time, in 365.25-day years; windows under one year produce no analysis.
// For a count c over y years, λ = c/y and P(t) = 1 - e^(-λt) for t in
// {1, 3, 6, 9} years, stored as a percentage rounded to two decimals.
// The current and historical feeds are not deduplicated against each other
// unless [Deduplicate] is applied.
package domain
