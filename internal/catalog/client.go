package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrUpstreamUnavailable is returned for any transport failure or non-2xx
// response from the catalog API.  The raw cause is logged, never surfaced.
var ErrUpstreamUnavailable = errors.New("failed to fetch data from external API")

const fetchTimeout = 30 * time.Second

// Client fetches show catalogs from the external ticketing API.  It holds no
// state beyond the HTTP client and performs no retries; a failed fetch must
// be re-triggered by the caller.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// NewClient builds a Client for the given API base URL, e.g.
// "https://tickets.example.com/wl".
func NewClient(baseURL string, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: fetchTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log: log,
	}
}

// FetchCatalog retrieves the full show catalog for one shop.  The endpoint
// is a POST with an empty JSON body per the upstream contract.
func (c *Client) FetchCatalog(ctx context.Context, shopID string) (*ShowsResponse, error) {
	url := fmt.Sprintf("%s/%s/api/shows", c.baseURL, shopID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader("{}"))
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("catalog fetch failed",
			zap.String("shop_id", shopID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: shop %s", ErrUpstreamUnavailable, shopID)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("catalog fetch returned non-2xx",
			zap.String("shop_id", shopID),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: shop %s: status %d", ErrUpstreamUnavailable, shopID, resp.StatusCode)
	}

	var out ShowsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.log.Error("catalog response decode failed",
			zap.String("shop_id", shopID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: shop %s", ErrUpstreamUnavailable, shopID)
	}
	return &out, nil
}
