package infer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/typediagram/pkg/diagram"
	errs "github.com/matzehuels/typediagram/pkg/errors"
	"github.com/matzehuels/typediagram/pkg/httputil"
	"github.com/matzehuels/typediagram/pkg/observability"
)

const (
	// DefaultTimeout bounds a single request to the engine.
	DefaultTimeout = 10 * time.Second

	// DefaultRetries is the number of attempts for transient failures.
	DefaultRetries = 3

	// DefaultRetryDelay is the initial backoff between attempts.
	DefaultRetryDelay = 500 * time.Millisecond

	typingPath       = "/typing"
	maxResponseBytes = 8 << 20
)

// Typer resolves an expression to its typing result. *Client implements it;
// tests and the server substitute fakes.
type Typer interface {
	Type(ctx context.Context, expression string) (*diagram.TypingResult, error)
}

// TyperFunc adapts a function to [Typer].
type TyperFunc func(ctx context.Context, expression string) (*diagram.TypingResult, error)

// Type calls f.
func (f TyperFunc) Type(ctx context.Context, expression string) (*diagram.TypingResult, error) {
	return f(ctx, expression)
}

// Client calls the inference engine. It is safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	retries int
	delay   time.Duration
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is left
// as given.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRetries sets the number of attempts and the initial backoff delay.
func WithRetries(attempts int, delay time.Duration) Option {
	return func(c *Client) { c.retries, c.delay = attempts, delay }
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *log.Logger) Option { return func(c *Client) { c.logger = l } }

// NewClient creates a client for the engine at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "invalid engine URL %q", baseURL)
	}
	c := &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		baseURL: u,
		retries: DefaultRetries,
		delay:   DefaultRetryDelay,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the engine address.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// Type normalizes and validates expression, then asks the engine to type it.
// A result is returned only when the engine parsed and typed the expression.
func (c *Client) Type(ctx context.Context, expression string) (*diagram.TypingResult, error) {
	expression = NormalizeExpression(expression)
	if err := errs.ValidateExpression(expression); err != nil {
		return nil, err
	}

	ctx, reqID := httputil.EnsureRequestID(ctx)
	endpoint := *c.baseURL
	endpoint.Path += typingPath
	endpoint.RawQuery = url.Values{"expression": {expression}}.Encode()

	start := time.Now()
	observability.Pipeline().OnTypingStart(ctx, expression)

	var body []byte
	attempt := 0
	err := httputil.Retry(ctx, c.retries, c.delay, func() error {
		attempt++
		if attempt > 1 {
			c.logger.Debug("retrying engine request", "attempt", attempt, "request_id", reqID)
		}
		var err error
		body, err = c.get(ctx, endpoint.String(), reqID)
		return err
	})

	var res *diagram.TypingResult
	if err == nil {
		res, err = c.decode(body)
	} else {
		err = classify(ctx, err, c.BaseURL())
	}
	observability.Pipeline().OnTypingComplete(ctx, expression, res != nil, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) get(ctx context.Context, endpoint, reqID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(httputil.HeaderRequestID, reqID)

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &httputil.RetryableError{Err: err}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := httputil.CheckStatus(resp); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, &httputil.RetryableError{Err: err}
	}
	if len(data) > maxResponseBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", maxResponseBytes)
	}
	return data, nil
}

func (c *Client) decode(body []byte) (*diagram.TypingResult, error) {
	res, err := diagram.DecodeTypingResult(body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeEngineUnavailable, err, "malformed engine response")
	}
	if !res.Parsed {
		msg := strings.TrimSpace(res.Error)
		if msg == "" {
			msg = "expression could not be typed"
		}
		return nil, errs.New(errs.ErrCodeExpressionRejected, "%s", msg)
	}
	return res, nil
}

// classify maps a transport failure to an error code.
func classify(ctx context.Context, err error, base string) error {
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		return errs.Wrap(errs.ErrCodeTimeout, err, "inference engine at %s did not answer in time", base)
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		return err
	}
	var se *httputil.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests {
		return errs.Wrap(errs.ErrCodeRateLimited, err, "inference engine is rate limiting requests")
	}
	return errs.Wrap(errs.ErrCodeEngineUnavailable, err, "inference engine at %s", base)
}

var _ Typer = (*Client)(nil)
