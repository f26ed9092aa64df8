package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalRegion(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"臺北市", "台北市"},
		{"臺北市中正區", "台北市"},
		{"台北市", "台北市"},
		{"花蓮縣政府南南東方 25.0 公里", "花蓮縣"},
		{"臺東縣成功鎮", "台東縣"},
		{"  宜蘭縣南澳鄉", "宜蘭縣"},
		{"臺北縣板橋市", "新北市"},
		{"桃園縣中壢市", "桃園市"},
		{"臺灣東部海域", "台灣東"},
		{"台北", "台北"},
		{"嘉 義", "嘉 義"},
		{"東 部", "東 部"},
		{"  ", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanonicalRegion(tc.in), "input %q", tc.in)
	}
}

func TestCanonicalRegion_Idempotent(t *testing.T) {
	for _, in := range []string{
		"臺北市", "臺北縣三重", "花蓮縣政府", " 臺 東", "澎湖縣馬公市", "臺灣海峽", "台", "  a b c d",
	} {
		once := CanonicalRegion(in)
		assert.Equal(t, once, CanonicalRegion(once), "input %q", in)
	}
}

func TestCanonicalRegion_FoldsBeforeTruncating(t *testing.T) {
	// Glyph folding must happen first so the variant and standard spellings
	// land on the same region within one run.
	assert.Equal(t, CanonicalRegion("台北市信義區"), CanonicalRegion("臺北市信義區"))
}

func TestPrefix_CountsRunes(t *testing.T) {
	assert.Equal(t, "花蓮縣", prefix("花蓮縣政府", 3))
	assert.Equal(t, "ab", prefix("ab", 3))
	assert.Equal(t, "", prefix("", 3))
}

func TestCanonicalRegion_LegacyCountiesMergeWithSuccessors(t *testing.T) {
	// Pre-2010 counties no longer keep their own 3-character key.
	cases := map[string]string{
		"臺北縣板橋市": "新北市中和區",
		"桃園縣中壢市": "桃園市中壢區",
		"臺中縣豐原市": "臺中市豐原區",
		"臺南縣新營市": "臺南市新營區",
		"高雄縣鳳山市": "高雄市鳳山區",
	}
	for legacy, current := range cases {
		assert.Equal(t, CanonicalRegion(current), CanonicalRegion(legacy), "input %q", legacy)
		assert.NotEqual(t, prefix(foldGlyphs(legacy), regionPrefixLen), CanonicalRegion(legacy))
	}
}
