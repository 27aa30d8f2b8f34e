package styledex

import (
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
}

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithTimeout sets the per-request timeout on the default client.
// Ignored when WithHTTPClient is also given. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// QueryOption adds parameters to a single request.
type QueryOption interface {
	applyQuery(url.Values)
}

type queryFunc func(url.Values)

func (f queryFunc) applyQuery(v url.Values) { f(v) }

// WithTopN limits the number of results returned by ranking calls.
func WithTopN(n int) QueryOption {
	return queryFunc(func(v url.Values) {
		v.Set("top_n", strconv.Itoa(n))
	})
}

// WithMinRating keeps only items whose rounded rating meets the floor.
func WithMinRating(r float64) QueryOption {
	return queryFunc(func(v url.Values) {
		v.Set("min_rating", strconv.FormatFloat(r, 'f', -1, 64))
	})
}

// WithBrand filters listing calls to a single brand.
// The value "any" matches all brands.
func WithBrand(brand string) QueryOption {
	return queryFunc(func(v url.Values) {
		v.Set("brand", brand)
	})
}

// WithPriceRange bounds listing calls to [min, max] inclusive.
func WithPriceRange(min, max float64) QueryOption {
	return queryFunc(func(v url.Values) {
		v.Set("min_price", strconv.FormatFloat(min, 'f', -1, 64))
		v.Set("max_price", strconv.FormatFloat(max, 'f', -1, 64))
	})
}
