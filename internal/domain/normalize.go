package domain

import (
	"errors"
	"fmt"
	"time"
)

// catalogZone is the agency's local time (UTC+8), used for origin times that
// carry no offset.
var catalogZone = time.FixedZone("CST", 8*60*60)

var originTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
}

var errNodeNotObject = errors.New("event node is not an element")

// Normalize converts one parsed catalog into canonical events. A missing or
// empty event list yields an empty extraction. Nodes that cannot be converted
// are recorded in Skipped and never abort the rest of the catalog.
func Normalize(raw RawCatalog, layout FeedLayout) Extraction {
	nodes := eventNodes(raw, layout.EventPath)
	ext := Extraction{Events: make([]EarthquakeEvent, 0, len(nodes))}

	for i, node := range nodes {
		event, reason, err := normalizeNode(node, layout)
		if reason != "" {
			ext.Skipped = append(ext.Skipped, SkippedNode{Index: i, Reason: reason, Err: err})
			continue
		}
		ext.Events = append(ext.Events, event)
	}
	return ext
}

func normalizeNode(node any, layout FeedLayout) (EarthquakeEvent, SkipReason, error) {
	if _, ok := node.(map[string]any); !ok {
		return EarthquakeEvent{}, SkipMalformedNode, fmt.Errorf("%w: got %T", errNodeNotObject, node)
	}

	intensity, ok := textAt(node, layout.Intensity)
	if !ok {
		return EarthquakeEvent{}, SkipMissingIntensity, nil
	}

	location, ok := textAt(node, layout.Location)
	if !ok {
		return EarthquakeEvent{}, SkipMissingLocation, errors.New("location is missing")
	}
	region := CanonicalRegion(location)
	if region == "" {
		return EarthquakeEvent{}, SkipMissingLocation, fmt.Errorf("location %q has no region", location)
	}

	rawTime, ok := textAt(node, layout.OriginTime)
	if !ok {
		return EarthquakeEvent{}, SkipMissingOriginTime, errors.New("origin time is missing")
	}
	originTime, err := ParseOriginTime(rawTime)
	if err != nil {
		return EarthquakeEvent{}, SkipInvalidOriginTime, err
	}

	return EarthquakeEvent{Time: originTime, Region: region, Intensity: intensity}, "", nil
}

// ParseOriginTime accepts RFC 3339 timestamps and the agency's offset-less
// "2006-01-02 15:04:05" forms, which are read as UTC+8.
func ParseOriginTime(s string) (time.Time, error) {
	for _, layout := range originTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, catalogZone); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse origin time %q: unrecognized format", s)
}

// Deduplicate drops events that repeat an earlier (region, intensity, time)
// triple. The first occurrence wins and order is preserved.
func Deduplicate(events []EarthquakeEvent) []EarthquakeEvent {
	type key struct {
		region    string
		intensity string
		unix      int64
	}
	seen := make(map[key]struct{}, len(events))
	out := make([]EarthquakeEvent, 0, len(events))
	for _, e := range events {
		k := key{region: e.Region, intensity: e.Intensity, unix: e.Time.UnixNano()}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}
