package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vortechdev/enilai-gateway/pkg/config"
	appErrors "github.com/vortechdev/enilai-gateway/pkg/errors"
)

// MetricsObserver receives timing for every upstream call.
type MetricsObserver interface {
	ObserveUpstreamRequest(method, resource string, status int, duration time.Duration)
}

// Client talks to the remote E-Nilai REST API. Exactly one attempt per call:
// no retry, no backoff. The per-request timeout comes from configuration.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	metrics MetricsObserver
}

// New constructs an upstream client against the configured base URL.
func New(cfg config.UpstreamConfig, logger *zap.Logger, metrics MetricsObserver) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		metrics: metrics,
	}
}

// WithToken binds a bearer token to every call made through the returned
// caller. An empty token yields unauthenticated calls (login only).
func (c *Client) WithToken(token string) *Caller {
	return &Caller{client: c, token: token}
}

// Caller issues authorized requests on behalf of one session.
type Caller struct {
	client *Client
	token  string
}

// GetList fetches a collection and normalizes the response envelope: bare
// arrays, `{"data": [...]}` and single-key keyed arrays all yield the same
// raw JSON array. Normalization happens here, once, so screens never see
// the upstream's envelope inconsistencies.
func (a *Caller) GetList(ctx context.Context, path string) (json.RawMessage, error) {
	raw, err := a.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return NormalizeList(raw)
}

// GetObject fetches a single record, unwrapping a `{"data": {...}}` envelope
// when present.
func (a *Caller) GetObject(ctx context.Context, path string) (json.RawMessage, error) {
	raw, err := a.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return NormalizeObject(raw)
}

// Post creates a record.
func (a *Caller) Post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	raw, err := a.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	return NormalizeObject(raw)
}

// Put updates a record.
func (a *Caller) Put(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	raw, err := a.do(ctx, http.MethodPut, path, body)
	if err != nil {
		return nil, err
	}
	return NormalizeObject(raw)
}

// Delete removes a record.
func (a *Caller) Delete(ctx context.Context, path string) error {
	_, err := a.do(ctx, http.MethodDelete, path, nil)
	return err
}

func (a *Caller) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	c := a.client

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.observe(method, path, 0, duration)
		c.logger.Warn("upstream request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "upstream request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(method, path, resp.StatusCode, duration)
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to read upstream response")
	}

	c.observe(method, path, resp.StatusCode, duration)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errorFromPayload(resp.StatusCode, raw)
	}

	return raw, nil
}

func (c *Client) observe(method, path string, status int, duration time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveUpstreamRequest(method, resourceSegment(path), status, duration)
}

// resourceSegment keeps metric label cardinality down by reporting only the
// leading path segment.
func resourceSegment(path string) string {
	path = strings.TrimLeft(path, "/")
	if idx := strings.IndexByte(path, '/'); idx > 0 {
		path = path[:idx]
	}
	if path == "" {
		return "root"
	}
	return path
}

// errorFromPayload surfaces the upstream `{"message": ...}` payload when
// parseable, falling back to a generic message with the upstream status.
func errorFromPayload(status int, raw []byte) *appErrors.Error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	message := ""
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Message != "" {
			message = payload.Message
		} else if payload.Error != "" {
			message = payload.Error
		}
	}
	if message == "" {
		message = fmt.Sprintf("upstream returned status %d", status)
	}
	return &appErrors.Error{Code: appErrors.ErrUpstream.Code, Status: status, Message: message}
}
