package styledex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is an HTTP client for the styledex API.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

// New builds a Client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	cfg := clientConfig{timeout: 30 * time.Second}
	for _, o := range opts {
		o.apply(&cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.apiKey,
		hc:      hc,
	}
}

// Items lists catalog items matching the given filters, ordered by id.
func (c *Client) Items(ctx context.Context, opts ...QueryOption) ([]Item, error) {
	var out itemListResponse
	if err := c.get(ctx, "/items", opts, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Item fetches a single catalog item by id.
func (c *Client) Item(ctx context.Context, id string) (Item, error) {
	var out Item
	if err := c.get(ctx, "/items/"+url.PathEscape(id), nil, &out); err != nil {
		return Item{}, err
	}
	return out, nil
}

// Similar returns the items most similar to the given one in descending
// similarity order.
func (c *Client) Similar(ctx context.Context, id string, opts ...QueryOption) ([]Item, error) {
	var out itemListResponse
	if err := c.get(ctx, "/items/"+url.PathEscape(id)+"/similar", opts, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// CheaperAlternatives returns similar items that are strictly cheaper
// than the given one, in descending similarity order.
func (c *Client) CheaperAlternatives(ctx context.Context, id string, opts ...QueryOption) ([]Item, error) {
	var out itemListResponse
	if err := c.get(ctx, "/items/"+url.PathEscape(id)+"/alternatives", opts, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Risk classifies the item and suggests safer alternatives when high risk.
func (c *Client) Risk(ctx context.Context, id string) (RiskReport, error) {
	var out RiskReport
	if err := c.get(ctx, "/items/"+url.PathEscape(id)+"/risk", nil, &out); err != nil {
		return RiskReport{}, err
	}
	return out, nil
}

// TopBrands returns brands ranked by mean rating.
func (c *Client) TopBrands(ctx context.Context, opts ...QueryOption) ([]GroupMean, error) {
	var out topGroupsResponse
	if err := c.get(ctx, "/insights/top-brands", opts, &out); err != nil {
		return nil, err
	}
	return out.Groups, nil
}

// Summary returns whole-catalog dashboard metrics.
func (c *Client) Summary(ctx context.Context) (Summary, error) {
	var out Summary
	if err := c.get(ctx, "/insights/summary", nil, &out); err != nil {
		return Summary{}, err
	}
	return out, nil
}

// Reload triggers a catalog refresh and returns the new item count.
func (c *Client) Reload(ctx context.Context) (int, error) {
	var out reloadResponse
	if err := c.do(ctx, http.MethodPost, "/catalog/reload", nil, &out); err != nil {
		return 0, err
	}
	return out.Items, nil
}

// Health reports component health. A degraded service still returns a
// report together with a nil error.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	if err := c.get(ctx, "/health", nil, &out); err != nil {
		return Health{}, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, opts []QueryOption, out any) error {
	return c.do(ctx, http.MethodGet, path, opts, out)
}

func (c *Client) do(ctx context.Context, method, path string, opts []QueryOption, out any) error {
	u := c.baseURL + path
	if len(opts) > 0 {
		q := url.Values{}
		for _, o := range opts {
			o.applyQuery(q)
		}
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode >= 400 {
		return c.decodeError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func (c *Client) decodeError(status int, body []byte) error {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Code != "" {
		if sentinel, ok := codeToSentinel[er.Code]; ok {
			return fmt.Errorf("%s: %w", er.Message, sentinel)
		}
		return fmt.Errorf("api error %s: %s", er.Code, er.Message)
	}
	if status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return fmt.Errorf("unexpected status %d", status)
}
