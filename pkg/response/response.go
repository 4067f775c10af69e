// Package response writes the uniform JSON envelope every endpoint
// returns:
//
//	{ "code": 200, "status": true, "message": "...", "data": ... }
//
// Callers branch on code/status, never on transport-level errors, so
// the envelope is emitted for failures too — with status:false and
// data:null.
package response

import (
	"encoding/json"
	"net/http"
)

// Envelope is the wire shape shared by every endpoint.
type Envelope struct {
	Code    int         `json:"code"`
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func write(w http.ResponseWriter, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.Code)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 envelope with a message and optional data.
func Success(w http.ResponseWriter, message string, data interface{}) {
	write(w, Envelope{Code: http.StatusOK, Status: true, Message: message, Data: data})
}

// Error sends an error envelope with the given HTTP status.
func Error(w http.ResponseWriter, code int, message string) {
	write(w, Envelope{Code: code, Status: false, Message: message, Data: nil})
}

// BadRequest sends a 400.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

// ValidationError sends a 400 with the per-field messages as data.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, Envelope{
		Code:    http.StatusBadRequest,
		Status:  false,
		Message: "Validation failed",
		Data:    errs,
	})
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// ServerError sends a 500.
func ServerError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}
