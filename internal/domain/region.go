package domain

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// regionPrefixLen is the number of characters that identify a top-level
// administrative unit in the agency's location strings, e.g. "花蓮縣政府南南東方".
const regionPrefixLen = 3

// glyphFolder rewrites the traditional variant of "Tai" used in official
// place names to the standard glyph.
var glyphFolder = runes.Map(func(r rune) rune {
	if r == '臺' {
		return '台'
	}
	return r
})

// regionTable maps a folded 3-character prefix to its canonical region.
// Counties merged into special municipalities in 2010 and 2014 are aliased to
// their successor so decades-old catalog entries aggregate with new ones.
var regionTable = map[string]string{
	"台北市": "台北市",
	"新北市": "新北市",
	"桃園市": "桃園市",
	"台中市": "台中市",
	"台南市": "台南市",
	"高雄市": "高雄市",
	"基隆市": "基隆市",
	"新竹市": "新竹市",
	"嘉義市": "嘉義市",
	"新竹縣": "新竹縣",
	"苗栗縣": "苗栗縣",
	"彰化縣": "彰化縣",
	"南投縣": "南投縣",
	"雲林縣": "雲林縣",
	"嘉義縣": "嘉義縣",
	"屏東縣": "屏東縣",
	"宜蘭縣": "宜蘭縣",
	"花蓮縣": "花蓮縣",
	"台東縣": "台東縣",
	"澎湖縣": "澎湖縣",
	"金門縣": "金門縣",
	"連江縣": "連江縣",

	"台北縣": "新北市",
	"桃園縣": "桃園市",
	"台中縣": "台中市",
	"台南縣": "台南市",
	"高雄縣": "高雄市",
}

// CanonicalRegion maps a free-text location to its top-level region name.
// Glyph variants are folded first. Known counties and cities come from the
// lookup table; anything else falls back to the first three characters,
// whitespace-trimmed. Applying it twice yields the same result as once.
func CanonicalRegion(location string) string {
	folded := foldGlyphs(location)
	if canon, ok := regionTable[prefix(strings.TrimSpace(folded), regionPrefixLen)]; ok {
		return canon
	}
	return strings.TrimSpace(prefix(folded, regionPrefixLen))
}

func foldGlyphs(s string) string {
	out, _, err := transform.String(glyphFolder, s)
	if err != nil {
		return strings.ReplaceAll(s, "臺", "台")
	}
	return out
}

// prefix returns the first n characters of s, counted in runes.
func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
