package wiktionary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/snonux/grunwald/internal"
	"github.com/sony/gobreaker"
)

const (
	DefaultBaseURL      = "https://en.wiktionary.org"
	DefaultProbeURL     = "http://www.google.com"
	DefaultTimeout      = 15 * time.Second
	DefaultMaxBodyBytes = 10 * 1024 * 1024
	// Original page images are often larger than any API reply
	DefaultMaxImageBytes = 64 * 1024 * 1024
	DefaultMaxFailures   = 5
	DefaultOpenTimeout   = 30 * time.Second

	apiPath = "/w/api.php"
)

// Config configures the API client
type Config struct {
	BaseURL string
	// ProbeURL is fetched before every request; empty disables the probe
	ProbeURL     string
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	// MaxImageBytes limits media downloads, MaxBodyBytes everything else
	MaxImageBytes int64
	// MaxFailures consecutive remote failures open the circuit breaker
	MaxFailures uint32
	OpenTimeout time.Duration
}

// DefaultConfig returns the configuration for the public English Wiktionary
func DefaultConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		ProbeURL:      DefaultProbeURL,
		UserAgent:     internal.UserAgent(),
		Timeout:       DefaultTimeout,
		MaxBodyBytes:  DefaultMaxBodyBytes,
		MaxImageBytes: DefaultMaxImageBytes,
		MaxFailures:   DefaultMaxFailures,
		OpenTimeout:   DefaultOpenTimeout,
	}
}

// Client performs GET requests against the MediaWiki action API
type Client struct {
	cfg        Config
	host       string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	log        *slog.Logger
}

// NewClient creates a new API client
func NewClient(cfg Config, logger *slog.Logger) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = def.MaxBodyBytes
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = def.MaxImageBytes
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = def.MaxFailures
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log := logger.With("component", "wiktionary")

	host := cfg.BaseURL
	if u, err := url.Parse(cfg.BaseURL); err == nil && u.Host != "" {
		host = u.Host
	}

	c := &Client{
		cfg:        cfg,
		host:       host,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "wiktionary",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			var netErr *NetworkError
			if errors.As(err, &netErr) {
				return netErr.reported()
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "from", from.String(), "to", to.String())
		},
	})
	return c
}

// Probe checks connectivity by fetching the probe URL.
// A failed request or an empty body means the remote side is unavailable.
func (c *Client) Probe(ctx context.Context) error {
	if c.cfg.ProbeURL == "" {
		return nil
	}

	unavailable := func(err error) error {
		c.log.Warn("connectivity probe failed", "url", c.cfg.ProbeURL, "error", err)
		return &NetworkError{
			Kind:    KindUnavailable,
			Message: fmt.Sprintf("Remote %s server is not available", c.host),
			Code:    NoCode,
			Err:     err,
		}
	}

	body, err := c.do(ctx, c.cfg.ProbeURL, c.cfg.MaxBodyBytes)
	if err != nil {
		return unavailable(err)
	}
	if len(body) == 0 {
		return unavailable(errors.New("empty probe response"))
	}
	return nil
}

// ContentURL is the extracts query for name
func (c *Client) ContentURL(name string) string {
	return c.cfg.BaseURL + apiPath +
		"?format=json&action=query&prop=extracts&redirects&continue&titles=" + url.QueryEscape(name)
}

// ImageURL is the pageimages query for name
func (c *Client) ImageURL(name string) string {
	return c.cfg.BaseURL + apiPath +
		"?format=json&action=query&prop=pageimages&piprop=original&redirects&continue&titles=" + url.QueryEscape(name)
}

// Get fetches an API reply through the circuit breaker. No retries are made.
func (c *Client) Get(ctx context.Context, target string) ([]byte, error) {
	return c.get(ctx, target, c.cfg.MaxBodyBytes)
}

// GetMedia is Get for image downloads, bounded by MaxImageBytes
func (c *Client) GetMedia(ctx context.Context, target string) ([]byte, error) {
	return c.get(ctx, target, c.cfg.MaxImageBytes)
}

func (c *Client) get(ctx context.Context, target string, limit int64) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, target, limit)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.log.Warn("request rejected by circuit breaker", "url", target)
		return nil, transportError(target, err)
	}
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *Client) do(ctx context.Context, target string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &NetworkError{Kind: KindInvalidOperation, Message: fmt.Sprintf("failed to create request: %v", err), Code: NoCode, Err: err}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("request failed", "url", target, "error", err)
		return nil, transportError(target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		c.log.Warn("unexpected status", "url", target, "status", resp.StatusCode)
		return nil, statusError(resp.StatusCode, target)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		c.log.Warn("failed to read body", "url", target, "error", err)
		return nil, transportError(target, err)
	}
	if int64(len(body)) > limit {
		return nil, transportError(target, fmt.Errorf("response exceeds %d bytes", limit))
	}

	c.log.Debug("request done", "url", target, "bytes", len(body), "duration", time.Since(start))
	return body, nil
}
