package cwa

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/couchcryptid/quake-risk-etl/internal/domain"
)

var zipMagic = []byte("PK\x03\x04")

// ParseCatalog decodes a catalog payload that is either a bare XML document
// or a ZIP archive holding one.
func ParseCatalog(payload []byte) (domain.RawCatalog, error) {
	if bytes.HasPrefix(payload, zipMagic) {
		return parseArchive(payload)
	}
	return DecodeTree(bytes.NewReader(payload))
}

// parseArchive decodes the first XML entry of a ZIP archive.
func parseArchive(payload []byte) (domain.RawCatalog, error) {
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return nil, fmt.Errorf("open catalog archive: %w", err)
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(path.Ext(f.Name), ".xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open archive entry %s: %w", f.Name, err)
		}
		catalog, err := DecodeTree(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("archive entry %s: %w", f.Name, err)
		}
		return catalog, nil
	}
	return nil, errors.New("catalog archive contains no xml document")
}
