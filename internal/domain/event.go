package domain

import "time"

// RawCatalog is the generic element tree produced by the catalog parser.
// Every element child is held as a []any (usually a singleton) and leaf
// values are strings.
type RawCatalog map[string]any

// Feed identifies which agency catalog a RawCatalog was fetched from.
type Feed string

const (
	FeedCurrent    Feed = "current"
	FeedHistorical Feed = "historical"
)

// EarthquakeEvent is the canonical record produced by Normalize.
// All three fields are always populated.
type EarthquakeEvent struct {
	Time      time.Time `json:"time"`
	Region    string    `json:"region"`
	Intensity string    `json:"intensity"`
}

// SkipReason explains why a raw event node was not turned into an event.
type SkipReason string

const (
	SkipMissingIntensity  SkipReason = "missing_intensity"
	SkipMissingLocation   SkipReason = "missing_location"
	SkipMissingOriginTime SkipReason = "missing_origin_time"
	SkipInvalidOriginTime SkipReason = "invalid_origin_time"
	SkipMalformedNode     SkipReason = "malformed_node"
)

// SkippedNode records a raw node that was dropped during normalization.
type SkippedNode struct {
	Index  int
	Reason SkipReason
	Err    error
}

// Extraction is the per-node outcome of normalizing one catalog.
type Extraction struct {
	Events  []EarthquakeEvent
	Skipped []SkippedNode
}

// CountSkipped returns how many nodes were dropped for the given reason.
func (e Extraction) CountSkipped(reason SkipReason) int {
	n := 0
	for _, s := range e.Skipped {
		if s.Reason == reason {
			n++
		}
	}
	return n
}

// Horizon is a forward-looking window for which a probability is estimated.
type Horizon struct {
	Years float64
	Label string
}

// Horizons are the fixed, ordered estimation windows.
var Horizons = []Horizon{
	{Years: 1, Label: "1y"},
	{Years: 3, Label: "3y"},
	{Years: 6, Label: "6y"},
	{Years: 9, Label: "9y"},
}

// HorizonProbabilities maps a horizon label to a percentage in [0, 100].
type HorizonProbabilities map[string]float64

// IntensityProbabilities maps an intensity label to its horizon probabilities.
type IntensityProbabilities map[string]HorizonProbabilities

// AnalysisResult maps a region to its per-intensity probabilities.
type AnalysisResult map[string]IntensityProbabilities

// Cells returns the number of (region, intensity) entries in the result.
func (r AnalysisResult) Cells() int {
	n := 0
	for _, byIntensity := range r {
		n += len(byIntensity)
	}
	return n
}
