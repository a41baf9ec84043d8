// Package catalog is a read-only client for the remote product API the
// storefront browses and searches. Product data lives entirely in that
// service; nothing is cached here.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"storefront/internal/domain"
)

// Client talks to the product API over HTTP with a bounded timeout.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a catalog client.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Search returns up to limit products whose name contains query,
// case-insensitively.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	endpoint, err := url.Parse(c.baseURL + "/rest/v1/products")
	if err != nil {
		return nil, fmt.Errorf("catalog: bad base url: %w", err)
	}

	params := url.Values{}
	params.Set("select", "id,name,slug,category,country,price")
	params.Set("name", "ilike.*"+query+"*")
	params.Set("limit", fmt.Sprintf("%d", limit))
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog: search returned status %d", resp.StatusCode)
	}

	var products []domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("catalog: decode response: %w", err)
	}
	return products, nil
}
