// Package feed fetches the signal list from the remote signals endpoint.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/newthinker/cryptosignals/internal/core"
	"go.uber.org/zap"
)

const (
	defaultPath    = "/signals"
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 8 << 20
)

// Fetcher performs one round trip to the signals endpoint.
type Fetcher interface {
	FetchSignals(ctx context.Context) ([]core.Signal, error)
}

// Observer receives the outcome of every fetch.
type Observer interface {
	ObserveFetch(duration time.Duration, rows int, err error)
}

// Archiver receives the raw body of every successful fetch.
type Archiver interface {
	Archive(ctx context.Context, body []byte) error
}

// Config holds the endpoint settings. It is built once and shared by
// whoever owns the refresh controller.
type Config struct {
	BaseURL   string
	Path      string
	Timeout   time.Duration
	UserAgent string
}

// Client implements Fetcher over HTTP
type Client struct {
	client   *http.Client
	endpoint string
	agent    string
	logger   *zap.Logger
	observer Observer
	archiver Archiver
}

// New creates a client for cfg.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	endpoint, err := buildEndpoint(cfg.BaseURL, cfg.Path)
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		agent:    cfg.UserAgent,
		logger:   logger,
	}, nil
}

// NewWithHTTPClient creates a client using a caller supplied http.Client,
// e.g. one with a custom transport.
func NewWithHTTPClient(cfg Config, hc *http.Client, logger *zap.Logger) (*Client, error) {
	c, err := New(cfg, logger)
	if err != nil {
		return nil, err
	}
	c.client = hc
	return c, nil
}

// SetObserver sets the fetch outcome observer
func (c *Client) SetObserver(o Observer) {
	c.observer = o
}

// SetArchiver sets the raw snapshot archiver
func (c *Client) SetArchiver(a Archiver) {
	c.archiver = a
}

// Endpoint returns the full URL the client requests.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// FetchSignals performs a single GET and returns the decoded records in
// the order received. Every failure is reported as core.ErrFetchFailed.
func (c *Client) FetchSignals(ctx context.Context) ([]core.Signal, error) {
	start := time.Now()
	signals, body, err := c.fetch(ctx)
	if c.observer != nil {
		c.observer.ObserveFetch(time.Since(start), len(signals), err)
	}
	if err != nil {
		c.logger.Warn("fetching signals failed",
			zap.String("endpoint", c.endpoint),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Debug("fetched signals",
		zap.Int("count", len(signals)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if c.archiver != nil {
		if err := c.archiver.Archive(ctx, body); err != nil {
			c.logger.Warn("archiving snapshot failed", zap.Error(err))
		}
	}

	return signals, nil
}

func (c *Client) fetch(ctx context.Context) ([]core.Signal, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, nil, fetchError(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.agent != "" {
		req.Header.Set("User-Agent", c.agent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fetchError(fmt.Errorf("requesting signals: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, fetchError(fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, fetchError(fmt.Errorf("reading response: %w", err))
	}

	signals, err := Decode(body)
	if err != nil {
		return nil, nil, err
	}
	return signals, body, nil
}

// Decode parses a SignalResponse body and returns its data sequence.
func Decode(body []byte) ([]core.Signal, error) {
	var envelope struct {
		Status *string        `json:"status"`
		Data   *[]core.Signal `json:"data"`
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&envelope); err != nil {
		return nil, fetchError(fmt.Errorf("decoding response: %w", err))
	}
	// The body must hold exactly one JSON document.
	if _, err := dec.Token(); err != io.EOF {
		return nil, fetchError(fmt.Errorf("decoding response: trailing data after envelope"))
	}
	if envelope.Status == nil {
		return nil, fetchError(fmt.Errorf("decoding response: missing status"))
	}
	if envelope.Data == nil {
		return nil, fetchError(fmt.Errorf("decoding response: missing data"))
	}

	return *envelope.Data, nil
}

func fetchError(cause error) error {
	return core.WrapError(core.ErrFetchFailed, cause)
}

func buildEndpoint(baseURL, path string) (string, error) {
	if baseURL == "" {
		return "", fmt.Errorf("base url is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base url must be absolute: %q", baseURL)
	}
	if path == "" {
		path = defaultPath
	}
	return strings.TrimSuffix(u.String(), "/") + "/" + strings.TrimPrefix(path, "/"), nil
}
