package response

import (
	"encoding/json"
	"net/http"

	"github.com/bistroboss/bistro/pkg/apperr"
	"github.com/bistroboss/bistro/pkg/logger"
)

// Envelope is the JSON body of every API response.
type Envelope struct {
	Status  int               `json:"status"`
	Success bool              `json:"success"`
	Error   apperr.Kind       `json:"error,omitempty"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Write encodes body as JSON with the given status.
func Write(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 JSON response with data.
func Success(w http.ResponseWriter, data interface{}) {
	Write(w, http.StatusOK, Envelope{Status: http.StatusOK, Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(w http.ResponseWriter, data interface{}) {
	Write(w, http.StatusCreated, Envelope{Status: http.StatusCreated, Success: true, Data: data})
}

// Fail maps err onto its status code and writes the error envelope.
// Internal causes are logged and replaced by a generic message.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.From(err)
	status := e.Kind.Status()

	if e.Kind == apperr.KindInternal || e.Kind == apperr.KindUpstream {
		log := logger.L
		if r != nil {
			log = logger.WithCtx(r.Context())
		}
		log.Error("request failed", "kind", string(e.Kind), "error", err)
	}

	Write(w, status, Envelope{
		Status:  status,
		Error:   e.Kind,
		Message: e.Message,
		Errors:  e.Fields,
	})
}

// Error sends an error envelope with an explicit status and message.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, Envelope{Status: status, Message: message})
}
