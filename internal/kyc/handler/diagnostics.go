package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/mssola/useragent"
	"github.com/tidwall/gjson"

	"kyc-intake/pkg/platform/audit"
	"kyc-intake/pkg/platform/httputil"
	"kyc-intake/pkg/requestcontext"
)

// echoedHeaders are the request headers reflected by the diagnostic
// endpoints.
var echoedHeaders = []string{
	"Content-Type",
	"User-Agent",
	"Origin",
	"X-Forwarded-For",
	"X-Request-ID",
}

type taskDataSummary struct {
	TaskID            string `json:"taskId,omitempty"`
	ProcessInstanceID string `json:"processInstanceId,omitempty"`
	BusinessKey       string `json:"businessKey,omitempty"`
	VariableCount     int    `json:"variableCount"`
	HasFormData       bool   `json:"hasFormData"`
}

// summarizeTaskData pulls the identifying fields out of an arbitrary
// engine payload without decoding the rest of it.
func summarizeTaskData(body []byte) taskDataSummary {
	variables := gjson.GetBytes(body, "variables")
	count := 0
	switch {
	case variables.IsObject():
		count = len(variables.Map())
	case variables.IsArray():
		count = len(variables.Array())
	}
	return taskDataSummary{
		TaskID:            gjson.GetBytes(body, "taskId").String(),
		ProcessInstanceID: gjson.GetBytes(body, "processInstanceId").String(),
		BusinessKey:       gjson.GetBytes(body, "businessKey").String(),
		VariableCount:     count,
		HasFormData:       truthy(gjson.GetBytes(body, "formData")),
	}
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null:
		return false
	case gjson.False:
		return false
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	default:
		return true
	}
}

// handleReceiveTaskData echoes data pushed by the workflow engine so the
// reverse flow can be checked end to end. The body is never validated.
func (h *Handler) handleReceiveTaskData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := requestcontext.Now(ctx)

	if r.Method == http.MethodGet {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"message":   "External API endpoint is working",
			"timestamp": now.UTC().Format(time.RFC3339),
			"method":    r.Method,
			"query":     flatten(r.URL.Query()),
			"headers":   selectedHeaders(r.Header),
		})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read task data",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, map[string]any{
			"success":   false,
			"error":     err.Error(),
			"message":   "Failed to process data from Camunda",
			"timestamp": now.UTC().Format(time.RFC3339),
		})
		return
	}

	summary := summarizeTaskData(body)
	h.logger.InfoContext(ctx, "task data received",
		"request_id", requestcontext.RequestID(ctx),
		"task_id", summary.TaskID,
		"process_instance_id", summary.ProcessInstanceID,
		"business_key", summary.BusinessKey,
		"variable_count", summary.VariableCount,
		"has_form_data", summary.HasFormData,
		"valid_json", gjson.ValidBytes(body),
	)

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      "Data received successfully from Camunda",
		"receivedAt":   now.UTC().Format(time.RFC3339),
		"dataReceived": summary,
		"echo": map[string]string{
			"taskId":            summary.TaskID,
			"processInstanceId": summary.ProcessInstanceID,
			"businessKey":       summary.BusinessKey,
		},
	})
}

type userAgentInfo struct {
	Browser        string `json:"browser,omitempty"`
	BrowserVersion string `json:"browserVersion,omitempty"`
	OS             string `json:"os,omitempty"`
	Mobile         bool   `json:"mobile"`
	Bot            bool   `json:"bot"`
}

func parseUserAgent(raw string) userAgentInfo {
	ua := useragent.New(raw)
	name, version := ua.Browser()
	return userAgentInfo{
		Browser:        name,
		BrowserVersion: version,
		OS:             ua.OS(),
		Mobile:         ua.Mobile(),
		Bot:            ua.Bot(),
	}
}

// handleTest is a connectivity check for the workflow engine and operators.
func (h *Handler) handleTest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body any
	if raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes)); err == nil && len(raw) > 0 {
		if gjson.ValidBytes(raw) {
			body = json.RawMessage(raw)
		} else {
			body = string(raw)
		}
	}

	h.logger.InfoContext(ctx, "test endpoint called",
		"request_id", requestcontext.RequestID(ctx),
		"method", r.Method,
	)

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Test endpoint is working!",
		"timestamp":   requestcontext.Now(ctx).UTC().Format(time.RFC3339),
		"method":      r.Method,
		"query":       flatten(r.URL.Query()),
		"body":        body,
		"headers":     selectedHeaders(r.Header),
		"userAgent":   parseUserAgent(r.UserAgent()),
		"environment": h.settings.Environment,
	})
}

type endpointInfo struct {
	URL         string `json:"url"`
	Method      string `json:"method"`
	Description string `json:"description"`
}

var endpointCatalog = map[string]endpointInfo{
	"KYC Form Submission": {
		URL:         "/api/camunda/submit-kyc",
		Method:      "POST",
		Description: "Receives KYC form data and completes the Camunda external task",
	},
	"Receive Task Data": {
		URL:         "/api/camunda/receive-task-data",
		Method:      "GET/POST",
		Description: "Receives data from Camunda (reverse flow)",
	},
	"Test Endpoint": {
		URL:         "/api/test",
		Method:      "GET/POST",
		Description: "Simple connectivity test",
	},
	"Metrics": {
		URL:         "/metrics",
		Method:      "GET",
		Description: "Prometheus metrics",
	},
}

// handleDashboard reports the endpoint catalog and recent audit activity.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recent := []audit.Event{}
	if h.audits != nil {
		events, err := h.audits.ListRecent(ctx, h.settings.RecentEvents)
		if err != nil {
			h.logger.WarnContext(ctx, "failed to list recent audit events",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		} else if events != nil {
			recent = events
		}
	}

	engineURL := h.settings.EngineBaseURL
	if engineURL == "" {
		engineURL = "Not set"
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"timestamp": requestcontext.Now(ctx).UTC().Format(time.RFC3339),
		"status":    "API Dashboard is running",
		"endpoints": endpointCatalog,
		"environment": map[string]string{
			"appEnv":     h.settings.Environment,
			"camundaUrl": engineURL,
		},
		"recentActivity": recent,
	})
}

func flatten(values map[string][]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func selectedHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(echoedHeaders))
	for _, name := range echoedHeaders {
		if v := h.Get(name); v != "" {
			out[name] = v
		}
	}
	return out
}
