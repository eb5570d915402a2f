package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service,AuditLister

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"kyc-intake/internal/kyc/models"
	"kyc-intake/internal/kyc/service"
	"kyc-intake/internal/platform/middleware"
	dErrors "kyc-intake/pkg/domain-errors"
	"kyc-intake/pkg/platform/audit"
	"kyc-intake/pkg/platform/httputil"
	"kyc-intake/pkg/requestcontext"
)

const maxBodyBytes = 1 << 20

// Service submits KYC forms to the workflow engine.
type Service interface {
	Submit(ctx context.Context, sub models.Submission) (*service.Result, error)
}

// AuditLister exposes recent audit activity for the dashboard.
type AuditLister interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

// Settings carries the deployment facts the diagnostic endpoints report.
type Settings struct {
	Environment   string
	EngineBaseURL string
	RecentEvents  int
}

// Handler serves the KYC intake API.
type Handler struct {
	logger   *slog.Logger
	kyc      Service
	audits   AuditLister
	settings Settings
}

// New creates a new KYC Handler. audits may be nil, in which case the
// dashboard reports no recent activity.
func New(kyc Service, audits AuditLister, logger *slog.Logger, settings Settings) *Handler {
	return &Handler{
		logger:   logger,
		kyc:      kyc,
		audits:   audits,
		settings: settings,
	}
}

// Register registers the KYC routes with the chi router. Method filtering
// and preflight handling happen in the CORS middleware so every route
// answers OPTIONS and disallowed verbs the same way.
func (h *Handler) Register(r chi.Router) {
	r.With(middleware.CORS(http.MethodPost)).
		HandleFunc("/api/camunda/submit-kyc", h.handleSubmitKYC)
	r.With(middleware.CORS(http.MethodPost, http.MethodGet)).
		HandleFunc("/api/camunda/receive-task-data", h.handleReceiveTaskData)
	r.With(middleware.CORS(http.MethodGet, http.MethodPost)).
		HandleFunc("/api/test", h.handleTest)
	r.With(middleware.CORS(http.MethodGet)).
		HandleFunc("/api/dashboard", h.handleDashboard)
}

type submitResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	TaskID          string `json:"taskId"`
	CamundaResponse any    `json:"camundaResponse"`
}

type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// handleSubmitKYC validates a form and completes the matching external task.
func (h *Handler) handleSubmitKYC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var sub models.Submission
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err == nil && len(body) > 0 {
		err = json.Unmarshal(body, &sub)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "invalid submit request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if sub.TaskID == "" {
		sub.TaskID = r.URL.Query().Get("taskId")
	}

	res, err := h.kyc.Submit(ctx, sub)
	if err != nil {
		h.writeSubmitError(ctx, w, sub.TaskID, err)
		return
	}

	h.logger.InfoContext(ctx, "kyc form submitted",
		"request_id", requestID,
		"task_id", res.TaskID,
	)
	resp := submitResponse{
		Success: true,
		Message: "KYC form submitted successfully",
		TaskID:  res.TaskID,
	}
	switch {
	case len(res.EngineResponse) == 0:
	case json.Valid(res.EngineResponse):
		resp.CamundaResponse = res.EngineResponse
	default:
		resp.CamundaResponse = string(res.EngineResponse)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeSubmitError(ctx context.Context, w http.ResponseWriter, taskID string, err error) {
	requestID := requestcontext.RequestID(ctx)
	de, ok := dErrors.As(err)
	if !ok || de.Code != dErrors.CodeBadGateway {
		h.logger.WarnContext(ctx, "kyc submission refused",
			"request_id", requestID,
			"task_id", taskID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.ErrorContext(ctx, "failed to complete external task",
		"request_id", requestID,
		"task_id", taskID,
		"error", err.Error(),
	)
	cause := de.Message
	if inner := errors.Unwrap(de); inner != nil {
		cause = inner.Error()
	}
	httputil.WriteJSON(w, http.StatusBadGateway, failureResponse{
		Success: false,
		Error:   cause,
		Message: "Failed to submit KYC form",
	})
}
