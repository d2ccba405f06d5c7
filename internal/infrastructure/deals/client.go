package deals

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dealdesk/backend/internal/domain"
)

const (
	maxAttempts = 3

	// maxErrorBodyBytes caps how much of a failed response is logged
	maxErrorBodyBytes = 1024

	// maxBodyBytes caps a line item response
	maxBodyBytes = 10 << 20
)

// Client fetches deal line items from the upstream deal review API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	maxBody     int64
	logger      *zap.Logger
}

// NewClient creates a deal source client. requestsPerHour bounds the upstream call rate.
func NewClient(baseURL, apiKey string, timeout time.Duration, requestsPerHour int, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if requestsPerHour <= 0 {
		requestsPerHour = 1000
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// rate.Limit is requests per second
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerHour)/3600), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: limiter,
		backoff:     exponentialBackoff,
		maxBody:     maxBodyBytes,
		logger:      logger.Named("deals"),
	}
}

// exponentialBackoff returns the wait before retrying after the given attempt: 500ms, 1s, 2s
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500<<(attempt-1)) * time.Millisecond
}

// ListLineItems returns the line items of a deal as products
func (c *Client) ListLineItems(ctx context.Context, dealID string) ([]domain.Product, error) {
	reqURL := fmt.Sprintf("%s/v1/deals/%s/line-items", c.baseURL, url.PathEscape(dealID))

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, c.backoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		body, retry, err := c.fetch(ctx, reqURL)
		if err == nil {
			return c.decode(dealID, body)
		}
		if !retry {
			return nil, err
		}

		c.logger.Warn("deal source request failed",
			zap.String("deal_id", dealID),
			zap.Int("attempt", attempt),
			zap.Error(err))
		lastErr = err
	}

	c.logger.Error("all deal source attempts failed", zap.String("deal_id", dealID))
	return nil, lastErr
}

// fetch performs one request. retry reports whether the failure is transient.
func (c *Client) fetch(ctx context.Context, reqURL string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "DealDesk/1.0")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("%w: %v", domain.ErrDealSourceFailure, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// one extra byte tells a full body from a truncated one
		body, err := readLimitedBody(resp.Body, c.maxBody+1)
		if err != nil {
			return nil, true, fmt.Errorf("%w: reading body: %v", domain.ErrDealSourceFailure, err)
		}
		if int64(len(body)) > c.maxBody {
			return nil, false, fmt.Errorf("%w: response exceeds %d bytes", domain.ErrDealSourceFailure, c.maxBody)
		}
		return body, false, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, domain.ErrDealNotFound
	}

	snippet, _ := readLimitedBody(resp.Body, maxErrorBodyBytes)
	c.logger.Debug("deal source error response",
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", snippet))

	err = fmt.Errorf("%w: status %d", domain.ErrDealSourceFailure, resp.StatusCode)
	retry = resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
	return nil, retry, err
}

func (c *Client) decode(dealID string, body []byte) ([]domain.Product, error) {
	var payload lineItemsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", domain.ErrDealSourceFailure, err)
	}

	products := MapToProducts(dealID, payload.LineItems)
	c.logger.Debug("decoded deal line items",
		zap.String("deal_id", dealID),
		zap.Int("count", len(products)))
	return products, nil
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
