package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kyc-intake/internal/engine"
	"kyc-intake/internal/kyc/handler"
	"kyc-intake/internal/kyc/kyctest"
	"kyc-intake/internal/kyc/models"
	"kyc-intake/internal/kyc/service"
	"kyc-intake/internal/platform/metrics"
	"kyc-intake/pkg/platform/audit/publisher"
	"kyc-intake/pkg/platform/audit/store/memory"
	"kyc-intake/pkg/testutil"
)

type completeCall struct {
	Path     string
	WorkerID string
	Vars     map[string]map[string]any
}

func TestRouterSubmitEndToEnd(t *testing.T) {
	var calls []completeCall
	engineSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			WorkerID  string                    `json:"workerId"`
			Variables map[string]map[string]any `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		calls = append(calls, completeCall{Path: r.URL.Path, WorkerID: body.WorkerID, Vars: body.Variables})
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(engineSrv.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	pub := publisher.NewPublisher(memory.NewInMemoryStore(10))
	svc := service.New(engine.New(engineSrv.URL, 2*time.Second), "kyc-form-worker",
		service.WithLogger(log),
		service.WithAuditPublisher(pub),
		service.WithMetrics(m),
	)
	h := handler.New(svc, pub, log, handler.Settings{Environment: "test", EngineBaseURL: engineSrv.URL, RecentEvents: 10})
	router := newRouter(log, m, reg, h)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/camunda/submit-kyc", models.Submission{
		TaskID:   "task-1",
		FormData: kyctest.ValidIndividual(),
	}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	requestID := rr.Header().Get("X-Request-ID")
	assert.NotEmpty(t, requestID)

	require.Len(t, calls, 1)
	assert.Equal(t, "/external-task/task-1/complete", calls[0].Path)
	assert.Equal(t, "kyc-form-worker", calls[0].WorkerID)
	assert.Equal(t, map[string]any{"value": "individual", "type": "String"}, calls[0].Vars["customerType"])
	assert.Equal(t, map[string]any{"value": false, "type": "Boolean"}, calls[0].Vars["usPerson"])

	t.Run("invalid form never reaches the engine", func(t *testing.T) {
		form := kyctest.ValidIndividual()
		form.Sanctions = nil
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/camunda/submit-kyc",
			models.Submission{TaskID: "task-2", FormData: form}))
		testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "validation_failed")
		assert.Len(t, calls, 1)
	})

	t.Run("dashboard shows the audit trail", func(t *testing.T) {
		rr := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			RecentActivity []struct {
				Action    string `json:"action"`
				TaskID    string `json:"task_id"`
				RequestID string `json:"request_id"`
			} `json:"recentActivity"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.RecentActivity, 4)
		assert.Equal(t, "kyc_submission_rejected", resp.RecentActivity[0].Action)
		assert.Equal(t, "kyc_task_completed", resp.RecentActivity[2].Action)
		assert.Equal(t, "task-1", resp.RecentActivity[2].TaskID)
		assert.Equal(t, requestID, resp.RecentActivity[2].RequestID)
	})

	t.Run("metrics are exposed", func(t *testing.T) {
		rr := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, `kyc_submissions_total{outcome="completed"} 1`)
		assert.Contains(t, body, `kyc_submissions_total{outcome="rejected"} 1`)
		assert.Contains(t, body, `route="/api/camunda/submit-kyc"`)
	})
}
