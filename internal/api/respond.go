// internal/api/respond.go
package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"fitclub/internal/apperr"
)

// Envelope is the wire shape of every response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// WriteSuccess writes a success envelope with the given status.
func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

// WriteError maps a domain error to its status and code. Anything outside
// the taxonomy becomes a plain 500 with no internal detail leaked.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if appErr := apperr.From(err); appErr != nil {
		writeJSON(w, appErr.Status, Envelope{Success: false, Error: appErr.Message, Code: appErr.Code})
		return
	}
	logger.Error("unclassified error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, Envelope{Success: false, Error: "internal server error"})
}

// WriteValidationError reports a rejected request payload.
func WriteValidationError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, Envelope{Success: false, Error: err.Error(), Code: "INVALID_INPUT"})
}

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
