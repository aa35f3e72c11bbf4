// Package upstream is the typed client for the weather and events REST
// backend. Every response is decoded into an explicit struct; anything that
// does not fit fails with ErrUpstreamDecode instead of leaking partial data.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/weather-events-bff/internal/models"
	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
	"github.com/noah-isme/weather-events-bff/pkg/middleware/requestid"
)

const maxBodyBytes = 10 << 20

// Observer receives one sample per backend call.
type Observer interface {
	ObserveUpstreamCall(endpoint string, status int, duration time.Duration)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
	Observer   Observer
}

// Client calls the backend. It holds no credentials; callers pass the
// session explicitly on each call.
type Client struct {
	baseURL  string
	hc       *http.Client
	logger   *zap.Logger
	observer Observer
}

// New constructs a Client.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		hc:       hc,
		logger:   logger,
		observer: opts.Observer,
	}
}

type request struct {
	name    string
	method  string
	path    string
	query   url.Values
	body    interface{}
	session *models.Session
	// auth requires an authenticated session; otherwise the bearer token is
	// only sent when one is available.
	auth bool
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do sends req and decodes a JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	data, _, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return appErrors.Clone(appErrors.ErrUpstreamDecode, "empty response from server")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstreamDecode.Code, appErrors.ErrUpstreamDecode.Status, appErrors.ErrUpstreamDecode.Message)
	}
	return nil
}

// send performs the round trip and maps failures onto the error taxonomy.
func (c *Client) send(ctx context.Context, req request) ([]byte, http.Header, error) {
	if req.auth && !req.session.Authenticated() {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build upstream request")
	}

	start := time.Now()
	resp, err := c.hc.Do(httpReq)
	if err != nil {
		c.observe(req.name, 0, time.Since(start))
		c.logger.Warn("upstream unreachable", zap.String("endpoint", req.name), zap.Error(err))
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, appErrors.ErrUpstreamUnavailable.Message)
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	duration := time.Since(start)
	c.observe(req.name, resp.StatusCode, duration)
	c.logger.Debug("upstream call",
		zap.String("endpoint", req.name),
		zap.String("method", req.method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", duration),
	)
	if readErr != nil {
		return nil, nil, appErrors.Wrap(readErr, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, appErrors.ErrUpstreamUnavailable.Message)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		req.session.Clear()
		return nil, nil, appErrors.Clone(appErrors.ErrSessionExpired, "")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, nil, statusError(resp.StatusCode, data)
	}
	return data, resp.Header, nil
}

func (c *Client) newRequest(ctx context.Context, req request) (*http.Request, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s body: %w", req.name, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.session.Authenticated() {
		httpReq.Header.Set("Authorization", "Bearer "+req.session.Token)
	}
	if id := requestid.FromContext(ctx); id != "" {
		httpReq.Header.Set(requestid.Header, id)
	}
	return httpReq, nil
}

func (c *Client) observe(name string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstreamCall(name, status, d)
	}
}

// statusError keeps the backend status and prefers the backend's own message.
func statusError(status int, data []byte) *appErrors.Error {
	message := appErrors.ErrUpstream.Message
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		switch {
		case strings.TrimSpace(body.Message) != "":
			message = body.Message
		case strings.TrimSpace(body.Error) != "":
			message = body.Error
		}
	}
	return &appErrors.Error{Code: codeForStatus(status), Status: status, Message: message}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return appErrors.ErrValidation.Code
	case http.StatusForbidden:
		return appErrors.ErrForbidden.Code
	case http.StatusNotFound:
		return appErrors.ErrNotFound.Code
	case http.StatusConflict:
		return appErrors.ErrConflict.Code
	default:
		return appErrors.ErrUpstream.Code
	}
}

// IsSessionExpired reports whether err means the client must log in again.
func IsSessionExpired(err error) bool {
	return errors.Is(err, appErrors.ErrSessionExpired)
}

func pageQuery(page, size int) url.Values {
	q := url.Values{}
	if page >= 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if size > 0 {
		q.Set("size", fmt.Sprint(size))
	}
	return q
}

func idPath(prefix string, id models.ID) string {
	return prefix + "/" + url.PathEscape(id.String())
}
