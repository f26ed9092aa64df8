package cwa

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/quake-risk-etl/internal/config"
	"github.com/couchcryptid/quake-risk-etl/internal/domain"
	"github.com/couchcryptid/quake-risk-etl/internal/observability"
)

// maxCatalogBytes bounds a single download; the historical archive is a few MB.
const maxCatalogBytes = 256 << 20

// Client implements domain.CatalogSource using the CWA open-data file API.
type Client struct {
	apiKey     string
	baseURL    string
	datasets   map[domain.Feed]string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a CWA catalog client.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  cfg.CWAAPIKey,
		baseURL: strings.TrimRight(cfg.CWABaseURL, "/"),
		datasets: map[domain.Feed]string{
			domain.FeedCurrent:    cfg.CWACurrentDataset,
			domain.FeedHistorical: cfg.CWAHistoricalDataset,
		},
		httpClient: &http.Client{
			Timeout: cfg.CWATimeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchCatalog downloads and parses the catalog for feed. The current feed
// is requested as XML and the historical feed as a ZIP archive.
func (c *Client) FetchCatalog(ctx context.Context, feed domain.Feed) (domain.RawCatalog, error) {
	start := time.Now()
	catalog, err := c.fetch(ctx, feed)
	c.metrics.FetchDuration.WithLabelValues(string(feed)).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchErrors.WithLabelValues(string(feed)).Inc()
		return nil, fmt.Errorf("fetch %s catalog: %w", feed, err)
	}
	return catalog, nil
}

func (c *Client) fetch(ctx context.Context, feed domain.Feed) (domain.RawCatalog, error) {
	dataset, ok := c.datasets[feed]
	if !ok || dataset == "" {
		return nil, fmt.Errorf("no dataset configured for feed %q", feed)
	}

	format := "XML"
	if feed == domain.FeedHistorical {
		format = "ZIP"
	}
	params := url.Values{
		"Authorization": {c.apiKey},
		"downloadType":  {"WEB"},
		"format":        {format},
	}
	fullURL := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(dataset), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", dataset, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("cwa API error: status %d: %s", resp.StatusCode, body)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(payload) > maxCatalogBytes {
		return nil, fmt.Errorf("catalog %s exceeds %d bytes", dataset, maxCatalogBytes)
	}

	c.logger.Debug("catalog downloaded", "feed", feed, "dataset", dataset, "bytes", len(payload))
	return ParseCatalog(payload)
}
