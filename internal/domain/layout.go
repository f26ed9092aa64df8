package domain

import "strings"

// FeedLayout describes where a feed keeps its event nodes and where each node
// keeps the fields Normalize needs. Paths are element names from the root.
type FeedLayout struct {
	Feed       Feed
	EventPath  []string
	Intensity  []string
	Location   []string
	OriginTime []string
}

// CurrentLayout matches the current-year significant earthquake report feed.
var CurrentLayout = FeedLayout{
	Feed:       FeedCurrent,
	EventPath:  []string{"cwaopendata", "Dataset", "Earthquake"},
	Intensity:  []string{"Intensity", "MaxIntensity"},
	Location:   []string{"EarthquakeInfo", "Epicenter", "Location"},
	OriginTime: []string{"EarthquakeInfo", "OriginTime"},
}

// HistoricalLayout matches the historical catalog archive. Its nodes are flat
// and sit one level deeper than the current feed's.
var HistoricalLayout = FeedLayout{
	Feed:       FeedHistorical,
	EventPath:  []string{"cwaopendata", "Dataset", "Catalog", "Earthquake"},
	Intensity:  []string{"MaxIntensity"},
	Location:   []string{"Location"},
	OriginTime: []string{"OriginTime"},
}

// LayoutFor returns the layout for a feed.
func LayoutFor(feed Feed) FeedLayout {
	if feed == FeedHistorical {
		return HistoricalLayout
	}
	return CurrentLayout
}

// eventNodes walks path from the catalog root and returns every node of the
// final element. Intermediate elements use their first occurrence.
func eventNodes(raw RawCatalog, path []string) []any {
	if len(path) == 0 {
		return nil
	}
	var node any = map[string]any(raw)
	for _, name := range path[:len(path)-1] {
		node = first(child(node, name))
		if node == nil {
			return nil
		}
	}
	switch nodes := child(node, path[len(path)-1]).(type) {
	case []any:
		return nodes
	case map[string]any:
		return []any{nodes}
	default:
		return nil
	}
}

// textAt follows path from node and returns the trimmed leaf text.
// ok is false when any element on the path is absent or the leaf is blank.
func textAt(node any, path []string) (string, bool) {
	for _, name := range path {
		node = first(child(node, name))
		if node == nil {
			return "", false
		}
	}
	s, isText := node.(string)
	if !isText {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func child(node any, name string) any {
	m, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	return m[name]
}

// first unwraps the singleton lists the parser emits for every element.
func first(v any) any {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return v
}
