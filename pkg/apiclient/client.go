package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/pkg/config"
	"stickerstreet/pkg/logger"
	"stickerstreet/pkg/metrics"
)

var Module = fx.Provide(New)

type (
	Params struct {
		fx.In
		Config config.IConfig
		Logger logger.Logger
	}

	client struct {
		baseURL  string
		adminKey string
		http     *http.Client
		logger   logger.Logger
	}
)

func New(p Params) Client {
	return NewClient(
		p.Config.GetString("api.base_url"),
		p.Config.GetString("api.admin_key"),
		p.Config.GetDuration("api.timeout"),
		p.Logger,
	)
}

// NewClient builds a client against baseURL. An empty adminKey sends no
// credential header.
func NewClient(baseURL, adminKey string, timeout time.Duration, log logger.Logger) Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &client{
		baseURL:  config.NormalizeBaseURL(baseURL),
		adminKey: strings.TrimSpace(adminKey),
		http:     &http.Client{Timeout: timeout},
		logger:   log,
	}
}

// call describes a single request.
type call struct {
	op       string
	fallback string
	// withStatus appends the HTTP status to the fallback message.
	withStatus bool
	method     string
	path       string
	query      url.Values
	body       any
	admin      bool
	// raw replaces body with a pre-encoded payload.
	raw         io.Reader
	contentType string
}

func (c *client) do(ctx context.Context, cl call, out any) error {
	start := time.Now()
	defer func() {
		metrics.APIDuration.WithLabelValues(cl.op).Observe(time.Since(start).Seconds())
	}()

	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var (
		body        io.Reader
		contentType = cl.contentType
	)
	switch {
	case cl.raw != nil:
		body = cl.raw
	case cl.body != nil:
		data, err := json.Marshal(cl.body)
		if err != nil {
			return c.fail(ctx, cl, 0, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return c.fail(ctx, cl, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cl.admin && c.adminKey != "" {
		req.Header.Set(AdminKeyHeader, c.adminKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(ctx, cl, 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(ctx, cl, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &payload)

		msg := strings.TrimSpace(payload.Error)
		if msg == "" {
			msg = c.fallbackMessage(cl, resp.StatusCode)
		}

		metrics.APICalls.WithLabelValues(cl.op, strconv.Itoa(resp.StatusCode)).Inc()
		c.logger.Warn(ctx, "api: non-2xx response",
			zap.String("op", cl.op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return &RequestError{Op: cl.op, Status: resp.StatusCode, Message: msg}
	}

	metrics.APICalls.WithLabelValues(cl.op, "ok").Inc()

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err = json.Unmarshal(data, out); err != nil {
		c.logger.Error(ctx, "api: failed to decode response", zap.String("op", cl.op), zap.Error(err), zap.ByteString("body", data))
		return &RequestError{Op: cl.op, Status: resp.StatusCode, Message: cl.fallback, Err: err}
	}
	return nil
}

func (c *client) fail(ctx context.Context, cl call, status int, err error) error {
	metrics.APICalls.WithLabelValues(cl.op, "error").Inc()
	c.logger.Error(ctx, "api: request failed", zap.String("op", cl.op), zap.Error(err))
	return &RequestError{Op: cl.op, Status: status, Message: cl.fallback, Err: err}
}

func (c *client) fallbackMessage(cl call, status int) string {
	if cl.withStatus {
		return fallback(cl.fallback, status)
	}
	return cl.fallback
}
