package wfs

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client fetches feature collections and service capabilities. The facade
// depends on this interface; tests substitute their own implementation.
type Client interface {
	// Fetch runs a GetFeature request and returns the raw payload.
	Fetch(ctx context.Context, spec *Spec) ([]byte, error)

	// Capabilities returns the layer names a service advertises.
	Capabilities(ctx context.Context, endpoint, version string) ([]string, error)
}

// Option configures the HTTP transport.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit applied across all
// endpoints.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	}
}

// WithMaxRetries sets how many times a transient failure is retried.
func WithMaxRetries(n int) Option {
	return func(c *httpClient) {
		c.maxRetries = n
	}
}

type httpClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
}

// New creates the default HTTP-backed Client.
func New(opts ...Option) Client {
	c := &httpClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(10, 10),
		maxRetries: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch runs a GetFeature request described by spec, retrying transient
// failures with linear backoff.
func (c *httpClient) Fetch(ctx context.Context, spec *Spec) ([]byte, error) {
	params := url.Values{
		"service":      {"WFS"},
		"version":      {spec.Version},
		"request":      {"GetFeature"},
		"typeName":     {spec.Layer},
		"cql_filter":   {spec.Filter},
		"outputFormat": {spec.OutputFormat},
	}
	reqURL := spec.Endpoint + "?" + params.Encode()

	start := time.Now()
	body, err := c.getWithRetry(ctx, spec.Endpoint, reqURL)
	observeRequest(spec, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Capabilities fetches the GetCapabilities document and returns the
// advertised layer names.
func (c *httpClient) Capabilities(ctx context.Context, endpoint, version string) ([]string, error) {
	params := url.Values{
		"service": {"WFS"},
		"version": {version},
		"request": {"GetCapabilities"},
	}
	reqURL := endpoint + "?" + params.Encode()

	start := time.Now()
	body, err := c.getWithRetry(ctx, endpoint, reqURL)
	observeCapabilities(endpoint, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return parseCapabilities(body)
}

// getWithRetry performs one GET, retrying transient failures up to
// maxRetries additional attempts.
func (c *httpClient) getWithRetry(ctx context.Context, endpoint, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			zap.L().Debug("wfs: retrying request",
				zap.String("endpoint", endpoint),
				zap.Int("attempt", attempt),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, &TransportError{Endpoint: endpoint, Err: ctx.Err()}
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		body, err := c.get(ctx, endpoint, reqURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !isTransient(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *httpClient) get(ctx context.Context, endpoint, reqURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: eris.Wrap(err, "rate limit")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: eris.Wrap(err, "build request")}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: eris.Wrap(err, "read body")}
	}
	return body, nil
}

// statusLabel renders an error as a metric label value.
func statusLabel(err error) string {
	if err == nil {
		return "200"
	}
	var te *TransportError
	if eris.As(err, &te) && te.StatusCode != 0 {
		return strconv.Itoa(te.StatusCode)
	}
	return "error"
}
