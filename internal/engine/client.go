// Package engine talks to the workflow engine's REST API. The only call the
// intake service needs is completing an external task with its variables.
package engine

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"kyc-intake/internal/kyc/transform"
)

const tracerName = "kyc-intake/internal/engine"

// CompleteRequest is the body of POST /external-task/{id}/complete.
type CompleteRequest struct {
	WorkerID  string                    `json:"workerId"`
	Variables transform.TaskVariableMap `json:"variables"`
}

// Client is a workflow engine REST client. It never retries: a failed
// completion is reported to the caller as is.
type Client struct {
	http   *resty.Client
	tracer trace.Tracer
}

type Option func(*Client)

// WithTracer overrides the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// New builds a client for the engine REST root, e.g.
// http://localhost:8080/engine-rest.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	rc.JSONMarshal = json.Marshal
	rc.JSONUnmarshal = json.Unmarshal

	c := &Client{http: rc, tracer: otel.Tracer(tracerName)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompleteExternalTask completes taskID with the given variables. On a 2xx
// answer the response body is returned verbatim; it is empty when the engine
// answers 204 No Content. Every failure is an *EngineError.
func (c *Client) CompleteExternalTask(ctx context.Context, taskID string, req CompleteRequest) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "engine.complete_external_task")
	defer span.End()
	span.SetAttributes(
		attribute.String("task_id", taskID),
		attribute.String("worker_id", req.WorkerID),
		attribute.Int("variable_count", len(req.Variables)),
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("taskId", taskID).
		SetBody(req).
		Post("/external-task/{taskId}/complete")
	if err != nil {
		engErr := classify(err)
		span.RecordError(engErr)
		span.SetStatus(codes.Error, string(engErr.Category))
		return nil, engErr
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))
	if !resp.IsSuccess() {
		engErr := &EngineError{
			Category:   CategoryRejected,
			StatusCode: resp.StatusCode(),
			Body:       string(resp.Body()),
		}
		span.SetStatus(codes.Error, string(engErr.Category))
		return nil, engErr
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, nil
	}
	return json.RawMessage(body), nil
}

func classify(err error) *EngineError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &EngineError{Category: CategoryTimeout, Underlying: err}
	}
	return &EngineError{Category: CategoryUnreachable, Underlying: err}
}
