package connect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"datamover/internal/connect/metrics"
	"datamover/internal/platform/config"
	dErrors "datamover/pkg/domain-errors"
)

// HTTPClient talks to the Kafka Connect REST API. Every call runs a bounded
// retry loop: transport errors and 5xx responses are retried with exponential
// backoff plus jitter, each attempt bounded by its own deadline; 4xx responses
// and context cancellation abort immediately.
type HTTPClient struct {
	baseURL     string
	httpc       *http.Client
	maxRetries  int
	backoffBase time.Duration
	breaker     *breaker
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient constructs a client from the connect configuration.
func NewHTTPClient(cfg config.ConnectConfig, logger *slog.Logger, m *metrics.Metrics) *HTTPClient {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	base := cfg.BackoffBase
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	return &HTTPClient{
		baseURL:     cfg.BaseURL,
		httpc:       &http.Client{Timeout: timeout},
		maxRetries:  retries,
		backoffBase: base,
		breaker:     newBreaker(cfg.BreakerOpens, cfg.BreakerCooloff),
		metrics:     m,
		logger:      logger,
	}
}

func (c *HTTPClient) ListConnectors(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.do(ctx, "list_connectors", http.MethodGet, "/connectors", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// ApplyConnector creates or updates a connector config. Kafka Connect treats
// PUT /connectors/{name}/config as an upsert.
func (c *HTTPClient) ApplyConnector(ctx context.Context, name string, config map[string]string) (*ConnectorInfo, error) {
	var info ConnectorInfo
	path := fmt.Sprintf("/connectors/%s/config", url.PathEscape(name))
	if err := c.do(ctx, "apply_connector", http.MethodPut, path, config, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *HTTPClient) ConnectorStatus(ctx context.Context, name string) (*ConnectorStatus, error) {
	var status ConnectorStatus
	path := fmt.Sprintf("/connectors/%s/status", url.PathEscape(name))
	if err := c.do(ctx, "connector_status", http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *HTTPClient) RestartConnector(ctx context.Context, name string) error {
	path := fmt.Sprintf("/connectors/%s/restart", url.PathEscape(name))
	return c.do(ctx, "restart_connector", http.MethodPost, path, nil, nil)
}

func (c *HTTPClient) PauseConnector(ctx context.Context, name string) error {
	path := fmt.Sprintf("/connectors/%s/pause", url.PathEscape(name))
	return c.do(ctx, "pause_connector", http.MethodPut, path, nil, nil)
}

func (c *HTTPClient) ResumeConnector(ctx context.Context, name string) error {
	path := fmt.Sprintf("/connectors/%s/resume", url.PathEscape(name))
	return c.do(ctx, "resume_connector", http.MethodPut, path, nil, nil)
}

func (c *HTTPClient) DeleteConnector(ctx context.Context, name string) error {
	path := "/connectors/" + url.PathEscape(name)
	return c.do(ctx, "delete_connector", http.MethodDelete, path, nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, operation, method, path string, body, out any) error {
	if !c.breaker.Allow() {
		c.metrics.IncBreakerDropped()
		c.metrics.SetBreakerState(true)
		return dErrors.New(dErrors.CodeUnavailable, "kafka connect circuit open")
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal connect request: %w", err)
		}
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.metrics.IncRetry()
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
			if lastErr != nil {
				break
			}
		}

		done, err := c.attempt(ctx, method, path, payload, out)
		if done {
			if err == nil {
				c.breaker.RecordSuccess()
				c.metrics.SetBreakerState(false)
				c.metrics.ObserveRequest(operation, "ok", time.Since(start).Seconds())
			} else {
				// Terminal 4xx: the cluster answered, so the breaker stays closed.
				c.breaker.RecordSuccess()
				c.metrics.ObserveRequest(operation, "client_error", time.Since(start).Seconds())
			}
			return err
		}

		lastErr = err
		c.logger.WarnContext(ctx, "kafka connect request failed",
			"operation", operation,
			"attempt", attempt+1,
			"error", err,
		)
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
	}

	c.breaker.RecordFailure()
	c.metrics.SetBreakerState(c.breaker.IsOpen())
	c.metrics.ObserveRequest(operation, "error", time.Since(start).Seconds())
	return dErrors.Wrap(dErrors.CodeUnavailable, "kafka connect unreachable", lastErr)
}

// attempt performs a single request. done=true means the outcome is terminal
// (success or a non-retryable client error); done=false asks the caller to
// retry.
func (c *HTTPClient) attempt(ctx context.Context, method, path string, payload []byte, out any) (bool, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return true, fmt.Errorf("build connect request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("connect returned %d: %s", resp.StatusCode, body)
	case resp.StatusCode == http.StatusNotFound:
		return true, dErrors.New(dErrors.CodeNotFound, "connector not found")
	case resp.StatusCode == http.StatusConflict:
		// Connect returns 409 during rebalances; these resolve on their own.
		return false, fmt.Errorf("connect rebalancing (409)")
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return true, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("connect rejected request: %s", body))
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return true, fmt.Errorf("decode connect response: %w", err)
		}
	}
	return true, nil
}

// backoff computes the delay before the given attempt: exponential in the
// attempt number with up to 20% jitter.
func (c *HTTPClient) backoff(attempt int) time.Duration {
	d := c.backoffBase << (attempt - 1)
	jitter := time.Duration(rand.Int63n(int64(d)/5 + 1)) //nolint:gosec // jitter doesn't need crypto rand
	return d + jitter
}
