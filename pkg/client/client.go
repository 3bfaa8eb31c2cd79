// Package client provides the resilient catalog search client: jittered
// requests, retry with exponential backoff, rate-limit handling, lenient
// response normalization and a write-through product detail cache.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/wb-catalog-client/pkg/cache"
	"github.com/Sternrassler/wb-catalog-client/pkg/catalog"
	"github.com/Sternrassler/wb-catalog-client/pkg/logging"
	"github.com/Sternrassler/wb-catalog-client/pkg/pricing"
)

// Config holds the client configuration.
type Config struct {
	// SearchURL is the catalog search endpoint.
	SearchURL string

	// DetailURL is the product detail endpoint.
	DetailURL string

	// Fixed catalog context sent with every request.
	Currency string
	Dest     string
	Locale   string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// JitterMin/JitterMax bound the random pre-request delay that keeps
	// the request rate from looking mechanical to the upstream.
	JitterMin time.Duration
	JitterMax time.Duration

	// Retry is the backoff policy shared by search and detail requests.
	Retry RetryConfig
}

// DefaultConfig returns the production configuration for the catalog
// upstream.
func DefaultConfig() Config {
	return Config{
		SearchURL: "https://search.wb.ru/exactmatch/ru/common/v4/search",
		DetailURL: "https://card.wb.ru/cards/detail",
		Currency:  "rub",
		Dest:      "-1257786",
		Locale:    "ru",
		UserAgent: "wb-catalog-client/1.0",
		Timeout:   30 * time.Second,
		JitterMin: 1 * time.Second,
		JitterMax: 3 * time.Second,
		Retry:     DefaultRetryConfig(),
	}
}

// Client is the catalog search client. Each instance owns one lazily
// created HTTP session and a constructor-injected cache store; there is no
// shared global state, so instances are independent in tests and in
// production.
//
// The instance is single-threaded per call chain: no internal locking
// guards the session, and calling Close while a search is in flight is a
// caller error. After Close the instance must be reconstructed; there is no
// implicit reconnect.
type Client struct {
	config     Config
	store      cache.Store
	normalizer *catalog.Normalizer
	logger     zerolog.Logger

	httpClient *http.Client
	closed     bool
}

// SearchOptions are the optional parameters of a search. Zero values mean
// absent.
type SearchOptions struct {
	// MinPrice constrains the base (pre-discount) price: only items with
	// base >= MinPrice qualify. Major currency units.
	MinPrice int

	// MaxPrice constrains the sale (post-discount) price: only items with
	// sale <= MaxPrice qualify. An item whose base price exceeds MaxPrice
	// can still be returned when its sale price fits. Major currency units.
	MaxPrice int

	// Discount is the minimal discount percentage to request upstream.
	Discount int

	// Category filters results by a case-insensitive substring of name or
	// brand after normalization. The filter fails open.
	Category string

	// Sort is one of the catalog sort modes; empty means catalog.SortPopular.
	Sort string
}

// New creates a catalog client with the given cache store.
func New(cfg Config, store cache.Store) (*Client, error) {
	if cfg.SearchURL == "" || cfg.DetailURL == "" {
		return nil, fmt.Errorf("search and detail endpoints are required")
	}
	if store == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	if cfg.JitterMax < cfg.JitterMin {
		return nil, fmt.Errorf("jitter_max must be >= jitter_min")
	}

	return &Client{
		config:     cfg,
		store:      store,
		normalizer: catalog.NewNormalizer(),
		logger:     logging.NewLogger("catalog-client"),
	}, nil
}

// Search queries the catalog and returns at most limit normalized items.
// It never returns an error: any unrecoverable failure is logged and yields
// an empty result, so callers only ever branch on emptiness.
func (c *Client) Search(ctx context.Context, query string, limit int, opts SearchOptions) []catalog.ProductSummary {
	if c.closed {
		c.logger.Error().Err(ErrClientClosed).Msg("Search on closed client")
		return nil
	}

	bounds := pricing.Translate(opts.MinPrice, opts.MaxPrice)
	if bounds.Clamped {
		c.logger.Warn().
			Int("min_price", opts.MinPrice).
			Msg("Minimum price below 1, clamped to 1")
	}
	if bounds.Contradictory {
		// Forwarded as-is: the upstream applies the min bound first and may
		// legitimately return nothing.
		c.logger.Warn().
			Int("min_price", opts.MinPrice).
			Int("max_price", opts.MaxPrice).
			Msg("Contradictory price bounds forwarded to upstream")
	}

	requestURL := c.config.SearchURL + "?" + buildSearchQuery(c.config, query, bounds, opts.Discount)

	var items []catalog.ProductSummary
	err := retryWithBackoff(ctx, c.config.Retry, c.logger, func() error {
		body, err := c.fetch(ctx, "search", requestURL)
		if err != nil {
			return err
		}
		parsed, err := c.normalizer.Summaries(body)
		if err != nil {
			errorsTotal.WithLabelValues(string(ErrorClassParse)).Inc()
			return &CatalogError{ErrorClass: ErrorClassParse, Message: "invalid search response", Err: err}
		}
		items = parsed
		return nil
	})
	if err != nil {
		c.logger.Error().Err(err).Str("query", query).Msg("Search failed, returning empty result")
		return nil
	}

	items = catalog.FilterByCategory(items, opts.Category, c.logger)
	sortMode := opts.Sort
	if sortMode == "" {
		sortMode = catalog.SortPopular
	}
	catalog.SortProducts(items, sortMode)

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// GetDetail returns the full record for one product, serving fresh cache
// entries without a network call. A nil result means not found; failures
// are logged, never returned.
func (c *Client) GetDetail(ctx context.Context, id string) *catalog.ProductDetail {
	if c.closed {
		c.logger.Error().Err(ErrClientClosed).Str("product_id", id).Msg("GetDetail on closed client")
		return nil
	}

	entry, err := c.store.Get(ctx, id)
	if err == nil {
		c.logger.Debug().Str("product_id", id).Bool("cache_hit", true).Msg("Detail served from cache")
		return &entry.Product
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Warn().Err(err).Str("product_id", id).Msg("Cache get error")
	}

	requestURL := c.config.DetailURL + "?" + buildDetailQuery(c.config, id)

	var detail *catalog.ProductDetail
	err = retryWithBackoff(ctx, c.config.Retry, c.logger, func() error {
		body, err := c.fetch(ctx, "detail", requestURL)
		if err != nil {
			return err
		}
		parsed, err := c.normalizer.Detail(body)
		if err != nil {
			errorsTotal.WithLabelValues(string(ErrorClassParse)).Inc()
			return &CatalogError{ErrorClass: ErrorClassParse, Message: "invalid detail response", Err: err}
		}
		detail = parsed
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			c.logger.Debug().Str("product_id", id).Msg("Product not found upstream")
			return nil
		}
		c.logger.Error().Err(err).Str("product_id", id).Msg("Detail fetch failed")
		return nil
	}
	if detail == nil {
		// 200 with an empty product list reads as absence too.
		c.logger.Debug().Str("product_id", id).Msg("Detail response carried no product")
		return nil
	}

	if err := c.store.Put(ctx, id, *detail); err != nil {
		c.logger.Warn().Err(err).Str("product_id", id).Msg("Cache write failed")
	}
	return detail
}

// fetch is the network half of the unit of work: jitter, one HTTP request,
// status handling. It returns the response body on 200 and a classified
// error otherwise, so the retry loop sees every failure.
func (c *Client) fetch(ctx context.Context, endpoint, requestURL string) ([]byte, error) {
	if err := c.jitter(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.session().Do(req)
	requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return nil, &CatalogError{ErrorClass: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusTooManyRequests {
		errorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Dur("backoff", c.config.Retry.RateLimitBackoff).
			Msg("Rate limited by upstream, backing off")
		// Flat penalty on top of the retry loop's exponential backoff.
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-time.After(c.config.Retry.RateLimitBackoff):
		}
		return nil, &CatalogError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassRateLimit,
			Message:    resp.Status,
		}
	}

	if resp.StatusCode != http.StatusOK {
		class := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Upstream request error")
		return nil, &CatalogError{
			StatusCode: resp.StatusCode,
			ErrorClass: class,
			Message:    resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &CatalogError{ErrorClass: ErrorClassNetwork, Message: "read body", Err: err}
	}
	return body, nil
}

// jitter sleeps a random duration in [JitterMin, JitterMax] before a
// request. Local to this instance; multiple instances do not coordinate.
func (c *Client) jitter(ctx context.Context) error {
	span := c.config.JitterMax - c.config.JitterMin
	delay := c.config.JitterMin
	if span > 0 {
		delay += time.Duration(rand.Int63n(int64(span)))
	}
	if delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
	case <-time.After(delay):
		return nil
	}
}

// session returns the shared HTTP client, creating it on first use.
func (c *Client) session() *http.Client {
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.config.Timeout}
	}
	return c.httpClient
}

// Close releases the network session. Idempotent; further calls on the
// instance fail closed until it is reconstructed.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
		c.httpClient = nil
	}
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
