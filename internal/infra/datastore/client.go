// Package datastore provides the client for the fund's REST data store
// (a json-server style API). Rows are stored in the same shape as the
// domain types, so responses decode straight into them.
package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Mohamad548/bilalhabashi/internal/domain"
	"github.com/Mohamad548/bilalhabashi/internal/infra/observability"
	"github.com/Mohamad548/bilalhabashi/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("datastore")

// errPreconditionFailed marks a 412 from a conditional write.
var errPreconditionFailed = errors.New("precondition failed")

// Client wraps HTTP calls to the data-store API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewClient creates a data-store client.
func NewClient(httpClient *http.Client, baseURL, token string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, metrics *observability.Metrics, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		metrics:    metrics,
		logger:     logger,
	}
}

// doRequest executes a request against the data-store API. 404 and 204 come
// back as (nil, nil); 412 as errPreconditionFailed; other 4xx are wrapped as
// permanent so the retry loop does not repeat them.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any, headers map[string]string) ([]byte, error) {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bulkhead.Release()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, resilience.Permanent(fmt.Errorf("encode request body: %w", err))
		}
		reqBody = bytes.NewReader(data)
	}

	url := fmt.Sprintf("%s/api/%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		c.logger.Error("datastore: failed to create request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, resilience.Permanent(err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("datastore: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("datastore: failed to read response body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent:
		return nil, nil // no data
	case resp.StatusCode == http.StatusPreconditionFailed:
		return nil, resilience.Permanent(errPreconditionFailed)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		c.logger.Warn("datastore: client error response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, resilience.Permanent(fmt.Errorf("datastore returned status %d: %s", resp.StatusCode, string(body)))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Warn("datastore: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, fmt.Errorf("datastore returned status %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Debug("datastore: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	return body, nil
}

// execute runs fn behind the circuit breaker with retries, counting failures
// against the given operation label.
func (c *Client) execute(ctx context.Context, operation string, fn func() error) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, fn)
	})
	if err != nil {
		c.metrics.IncrStoreError(operation)
	}
	return err
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// getList fetches a collection and decodes it.
func getList[T any](ctx context.Context, c *Client, operation, path string) ([]T, error) {
	var items []T
	err := c.execute(ctx, operation, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
		if err != nil {
			return err
		}
		if body == nil {
			items = []T{}
			return nil
		}
		if err := json.Unmarshal(body, &items); err != nil {
			return resilience.Permanent(fmt.Errorf("decode %s: %w", path, err))
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "datastore/" + path, Err: err}
	}
	return items, nil
}
