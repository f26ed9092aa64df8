package cwa

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-risk-etl/internal/domain"
)

// buildArchive zips the given name → content pairs in order.
func buildArchive(t *testing.T, files ...[2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f[0])
		require.NoError(t, err)
		_, err = w.Write([]byte(f[1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParseCatalog_Archive(t *testing.T) {
	payload := buildArchive(t,
		[2]string{"README.txt", "catalog of felt earthquakes"},
		[2]string{"E-A0073-001.XML", string(loadFixture(t, "historical.xml"))},
	)

	tree, err := ParseCatalog(payload)
	require.NoError(t, err)

	ext := domain.Normalize(tree, domain.HistoricalLayout)
	assert.Len(t, ext.Events, 3)
}

func TestParseCatalog_ArchiveWithoutXML(t *testing.T) {
	payload := buildArchive(t, [2]string{"notes.txt", "nothing here"})

	_, err := ParseCatalog(payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no xml document")
}

func TestParseCatalog_ArchiveWithBrokenXML(t *testing.T) {
	payload := buildArchive(t, [2]string{"catalog.xml", "<cwaopendata><Dataset>"})

	_, err := ParseCatalog(payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog.xml")
}

func TestParseCatalog_CorruptArchive(t *testing.T) {
	_, err := ParseCatalog([]byte("PK\x03\x04 definitely not a zip"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open catalog archive")
}
