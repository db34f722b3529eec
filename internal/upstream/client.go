// Package upstream is the HTTP client for the fleet backend. Every request
// path comes from the endpoints package, so the tenant is always the first
// path segment.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"checklist/internal/endpoints"
	"checklist/internal/platform/config"
	"checklist/internal/platform/metrics"
	dErrors "checklist/pkg/domain-errors"
	"checklist/pkg/requestcontext"
)

type Client struct {
	http    *resty.Client
	tracer  trace.Tracer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracer injects a tracer; the global provider is used otherwise.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithRetryWait overrides the backoff between retried GETs.
func WithRetryWait(wait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.http.SetRetryWaitTime(wait).SetRetryMaxWaitTime(maxWait)
	}
}

func New(cfg config.UpstreamConfig, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(retryIdempotent).
		SetHeader("Accept", "application/json")

	c := &Client{http: rc}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("checklist/upstream")
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c.http.SetLogger(restyLogger{logger: c.logger})
	return c
}

// retryIdempotent only replays reads. Login, token refresh and data sync are
// POSTs the backend may already have applied when the connection dropped.
func retryIdempotent(r *resty.Response, err error) bool {
	if err == nil || r == nil || r.Request == nil {
		return false
	}
	return r.Request.Method == http.MethodGet
}

// restyLogger routes resty's own warnings (retries, response parse failures)
// through the service logger instead of stderr.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "resty")
}

func (c *Client) Login(ctx context.Context, tenant string, req LoginRequest) (*TokenResponse, error) {
	var out TokenResponse
	err := c.do(ctx, endpoints.OpLogin, tenant, http.MethodPost, endpoints.Login(tenant), "", req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RefreshToken(ctx context.Context, tenant, refreshToken string) (*TokenResponse, error) {
	var out TokenResponse
	err := c.do(ctx, endpoints.OpRefreshToken, tenant, http.MethodPost, endpoints.RefreshToken(tenant), "",
		refreshRequest{RefreshToken: refreshToken}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, tenant string, req RegisterRequest) error {
	return c.do(ctx, endpoints.OpRegister, tenant, http.MethodPost, endpoints.Register(tenant), "", req, nil)
}

func (c *Client) RequestPasswordReset(ctx context.Context, tenant string, req PasswordResetRequest) error {
	return c.do(ctx, endpoints.OpRequestPasswordReset, tenant, http.MethodPost, endpoints.RequestPasswordReset(tenant), "", req, nil)
}

func (c *Client) ResetPassword(ctx context.Context, tenant string, req ResetPasswordRequest) error {
	return c.do(ctx, endpoints.OpResetPassword, tenant, http.MethodPost, endpoints.ResetPassword(tenant), "", req, nil)
}

func (c *Client) ChecklistModels(ctx context.Context, tenant, token string) (Document, error) {
	var out Document
	err := c.do(ctx, endpoints.OpChecklistModels, tenant, http.MethodGet, endpoints.ChecklistModels(tenant), token, nil, &out)
	return out, err
}

func (c *Client) ChecklistModelDetails(ctx context.Context, tenant, token string, id int64) (Document, error) {
	var out Document
	err := c.do(ctx, endpoints.OpChecklistModelDetails, tenant, http.MethodGet, endpoints.ChecklistModelDetails(tenant, id), token, nil, &out)
	return out, err
}

func (c *Client) Checklists(ctx context.Context, tenant, token string) (Document, error) {
	var out Document
	err := c.do(ctx, endpoints.OpChecklists, tenant, http.MethodGet, endpoints.Checklists(tenant), token, nil, &out)
	return out, err
}

func (c *Client) Vehicles(ctx context.Context, tenant, token string) ([]Vehicle, error) {
	var out []Vehicle
	err := c.do(ctx, endpoints.OpVehicles, tenant, http.MethodGet, endpoints.Vehicles(tenant), token, nil, &out)
	return out, err
}

// DataSync pushes checklists filled offline for userID and returns the
// backend's sync result.
func (c *Client) DataSync(ctx context.Context, tenant, token, userID string, payload Document) (Document, error) {
	var out Document
	err := c.do(ctx, endpoints.OpDataSync, tenant, http.MethodPost, endpoints.DataSync(tenant, userID), token, payload, &out)
	return out, err
}

func (c *Client) Healthcheck(ctx context.Context, tenant string) error {
	return c.do(ctx, endpoints.OpHealthcheck, tenant, http.MethodGet, endpoints.Healthcheck(tenant), "", nil, nil)
}

func (c *Client) do(ctx context.Context, op endpoints.Operation, tenant, method, path, token string, body, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "upstream."+string(op), trace.WithAttributes(
		attribute.String("checklist.tenant", tenant),
		attribute.String("checklist.operation", string(op)),
	))
	start := time.Now()
	defer func() {
		c.metrics.ObserveUpstream(string(op), time.Since(start).Seconds(), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req := c.http.R().SetContext(ctx)
	if rid := requestcontext.RequestID(ctx); rid != "" {
		req.SetHeader("X-Request-ID", rid)
	}
	if token != "" {
		req.SetAuthToken(token)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return classifyTransportError(ctx, op, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))

	if resp.IsError() {
		c.logger.WarnContext(ctx, "upstream call rejected",
			"operation", op,
			"tenant", tenant,
			"status", resp.StatusCode(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return statusError(resp.StatusCode(), resp.Body())
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "unexpected response from backend")
	}
	return nil
}

func classifyTransportError(ctx context.Context, op endpoints.Operation, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "backend timed out on "+string(op))
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "backend unreachable on "+string(op))
}

func statusError(status int, body []byte) error {
	msg := http.StatusText(status)
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		if eb.Message != "" {
			msg = eb.Message
		} else if eb.Error != "" {
			msg = eb.Error
		}
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return dErrors.New(dErrors.CodeUnauthorized, msg)
	case status == http.StatusNotFound:
		return dErrors.New(dErrors.CodeNotFound, msg)
	case status == http.StatusConflict:
		return dErrors.New(dErrors.CodeConflict, msg)
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return dErrors.New(dErrors.CodeTimeout, msg)
	case status >= http.StatusInternalServerError:
		return dErrors.New(dErrors.CodeUnavailable, msg)
	default:
		return dErrors.New(dErrors.CodeBadRequest, msg)
	}
}
