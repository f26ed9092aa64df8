package domain

import "context"

// CatalogSource retrieves and parses one agency catalog.
type CatalogSource interface {
	FetchCatalog(ctx context.Context, feed Feed) (RawCatalog, error)
}
