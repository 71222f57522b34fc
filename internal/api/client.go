// Package api holds one function per remote operation of the social API.
// Each method performs exactly one HTTP round trip and owns no state
// beyond the shared transport: sessions come from the caller, caching is
// the query layer's job.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/social-client/internal/model"
	"github.com/d60-Lab/social-client/pkg/logger"
)

// Client issues requests against one API host.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// Options tune the client; zero values get defaults.
type Options struct {
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
	Transport      http.RoundTripper
}

func NewClient(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 20
	}
	if opts.Burst <= 0 {
		opts.Burst = 10
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(opts.Transport),
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.Burst),
	}
}

// envelope is the API's uniform response shape.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do runs one request and decodes the envelope's data field into out when
// out is non-nil. A nil session simply omits the Authorization header;
// whether an unauthenticated call is allowed is the server's decision.
func (c *Client) do(ctx context.Context, sess *model.Session, method, path string, body io.Reader, contentType string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if sess != nil {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		sentry.CaptureException(err)
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	var env envelope
	if len(raw) > 0 {
		// tolerate empty bodies on deletes
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	if resp.StatusCode >= 300 {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, sess *model.Session, path string, out any) error {
	return c.do(ctx, sess, http.MethodGet, path, nil, "", out)
}

func (c *Client) postJSON(ctx context.Context, sess *model.Session, path string, in, out any) error {
	return c.sendJSON(ctx, sess, http.MethodPost, path, in, out)
}

func (c *Client) patchJSON(ctx context.Context, sess *model.Session, path string, in, out any) error {
	return c.sendJSON(ctx, sess, http.MethodPatch, path, in, out)
}

func (c *Client) sendJSON(ctx context.Context, sess *model.Session, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}
	return c.do(ctx, sess, method, path, body, "application/json", out)
}

func (c *Client) delete(ctx context.Context, sess *model.Session, path string, out any) error {
	return c.do(ctx, sess, http.MethodDelete, path, nil, "", out)
}

// pageQuery renders the shared page/limit query string.
func pageQuery(page, limit int) string {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(limit))
	return v.Encode()
}
