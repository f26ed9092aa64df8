package cwa

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-risk-etl/internal/domain"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

func TestDecodeTree_Shape(t *testing.T) {
	doc := `<root><a>1</a><a>2</a><b><c> x </c></b><empty/></root>`

	tree, err := DecodeTree(strings.NewReader(doc))
	require.NoError(t, err)

	want := domain.RawCatalog{
		"root": []any{map[string]any{
			"a":     []any{"1", "2"},
			"b":     []any{map[string]any{"c": []any{" x "}}},
			"empty": []any{""},
		}},
	}
	assert.Equal(t, want, tree)
}

func TestDecodeTree_Errors(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":     "",
		"truncated": "<root><a>1</a>",
		"garbage":   "{\"json\": true}",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeTree(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestDecodeTree_CurrentFixtureNormalizes(t *testing.T) {
	tree, err := ParseCatalog(loadFixture(t, "current.xml"))
	require.NoError(t, err)

	ext := domain.Normalize(tree, domain.CurrentLayout)
	require.Len(t, ext.Events, 2)
	assert.Equal(t, "花蓮縣", ext.Events[0].Region)
	assert.Equal(t, "6強", ext.Events[0].Intensity)
	assert.Equal(t, "台東縣", ext.Events[1].Region)

	require.Len(t, ext.Skipped, 1)
	assert.Equal(t, domain.SkipMissingIntensity, ext.Skipped[0].Reason)
}

func TestDecodeTree_HistoricalFixtureNormalizes(t *testing.T) {
	tree, err := ParseCatalog(loadFixture(t, "historical.xml"))
	require.NoError(t, err)

	ext := domain.Normalize(tree, domain.HistoricalLayout)
	require.Len(t, ext.Events, 3)
	assert.Equal(t, "南投縣", ext.Events[0].Region)
	assert.Equal(t, "新北市", ext.Events[1].Region)
	assert.Equal(t, "花蓮縣", ext.Events[2].Region)
	assert.Equal(t, 1, ext.CountSkipped(domain.SkipInvalidOriginTime))
}
