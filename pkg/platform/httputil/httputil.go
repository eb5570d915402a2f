// Package httputil writes the JSON envelopes shared by every handler.
package httputil

import (
	"net/http"

	"github.com/goccy/go-json"

	dErrors "kyc-intake/pkg/domain-errors"
)

type errorBody struct {
	Error       string               `json:"error"`
	Description string               `json:"error_description,omitempty"`
	Fields      []dErrors.FieldError `json:"fields,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into its HTTP envelope. Errors without
// a code are reported as internal errors. Internal errors never expose their
// description.
func WriteError(w http.ResponseWriter, err error) {
	body := errorBody{Error: string(dErrors.CodeInternal)}
	status := http.StatusInternalServerError

	if de, ok := dErrors.As(err); ok {
		status = dErrors.HTTPStatus(de.Code)
		body.Error = string(de.Code)
		if de.Code != dErrors.CodeInternal {
			body.Description = de.Message
			body.Fields = de.Fields
		}
	}

	WriteJSON(w, status, body)
}
