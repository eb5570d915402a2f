package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Engine,AuditPublisher

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"kyc-intake/internal/engine"
	"kyc-intake/internal/kyc/models"
	"kyc-intake/internal/kyc/transform"
	"kyc-intake/internal/kyc/validation"
	"kyc-intake/internal/platform/metrics"
	dErrors "kyc-intake/pkg/domain-errors"
	"kyc-intake/pkg/platform/audit"
	"kyc-intake/pkg/requestcontext"
)

// Engine completes external tasks on the workflow engine.
type Engine interface {
	CompleteExternalTask(ctx context.Context, taskID string, req engine.CompleteRequest) (json.RawMessage, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Result is a successful task completion. EngineResponse is nil when the
// engine answered without a body.
type Result struct {
	TaskID         string
	EngineResponse json.RawMessage
}

// Service turns a submitted form into a completed external task.
type Service struct {
	engine         Engine
	workerID       string
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service completing tasks as workerID.
func New(eng Engine, workerID string, opts ...Option) *Service {
	s := &Service{engine: eng, workerID: workerID}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the form, converts it into task variables and completes
// the task. The engine is called at most once and never when validation
// fails.
func (s *Service) Submit(ctx context.Context, sub models.Submission) (*Result, error) {
	taskID := strings.TrimSpace(sub.TaskID)
	base := audit.Event{
		TaskID:            taskID,
		ProcessInstanceID: sub.ProcessInstanceID,
	}
	if sub.FormData != nil {
		base.CustomerType = string(sub.FormData.CustomerType)
	}

	switch {
	case taskID == "":
		return nil, s.malformed(ctx, base, "Task ID is required")
	case sub.FormData == nil:
		return nil, s.malformed(ctx, base, "Form data is required")
	}

	s.logAudit(ctx, audit.EventSubmissionReceived, base)

	res := validation.Validate(sub.FormData)
	if !res.OK() {
		for _, f := range res.Fields() {
			s.incrementValidationError(f)
		}
		rejected := base
		rejected.Reason = strings.Join(res.Fields(), ",")
		s.logAudit(ctx, audit.EventSubmissionRejected, rejected)
		s.incrementSubmission(metrics.OutcomeRejected)
		return nil, res.Err()
	}

	vars, err := transform.Transform(sub.FormData, transform.WithBackup(sub.RawFormData))
	if err != nil {
		s.incrementSubmission(metrics.OutcomeFailed)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build task variables")
	}

	start := time.Now()
	body, err := s.engine.CompleteExternalTask(ctx, taskID, engine.CompleteRequest{
		WorkerID:  s.workerID,
		Variables: vars,
	})
	s.observeEngineCall(err, time.Since(start))
	if err != nil {
		failed := base
		failed.Reason = err.Error()
		s.logAudit(ctx, audit.EventTaskFailed, failed)
		s.incrementSubmission(metrics.OutcomeFailed)
		return nil, dErrors.Wrap(err, dErrors.CodeBadGateway, "failed to complete external task")
	}

	s.logAudit(ctx, audit.EventTaskCompleted, base)
	s.incrementSubmission(metrics.OutcomeCompleted)
	return &Result{TaskID: taskID, EngineResponse: body}, nil
}

func (s *Service) malformed(ctx context.Context, base audit.Event, msg string) error {
	base.Reason = msg
	s.logAudit(ctx, audit.EventSubmissionRejected, base)
	s.incrementSubmission(metrics.OutcomeMalformed)
	return dErrors.New(dErrors.CodeBadRequest, msg)
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, ev audit.Event) {
	ev.Action = string(event)
	ev.RequestID = requestcontext.RequestID(ctx)
	if s.logger != nil {
		args := []any{"event", event, "log_type", "audit", "task_id", ev.TaskID}
		if ev.RequestID != "" {
			args = append(args, "request_id", ev.RequestID)
		}
		if ev.Reason != "" {
			args = append(args, "reason", ev.Reason)
		}
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, ev); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"event", event,
			"error", err,
		)
	}
}

func (s *Service) incrementSubmission(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementSubmission(outcome)
	}
}

func (s *Service) incrementValidationError(field string) {
	if s.metrics != nil {
		s.metrics.IncrementValidationError(field)
	}
}

func (s *Service) observeEngineCall(err error, d time.Duration) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	var engErr *engine.EngineError
	if errors.As(err, &engErr) {
		outcome = string(engErr.Category)
	} else if err != nil {
		outcome = "error"
	}
	s.metrics.ObserveEngineCall(outcome, d)
}
