package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

const (
	codeValidation         = "validation_error"
	codeInvalidReference   = "invalid_reference"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeMethodNotAllowed   = "method_not_allowed"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps an error kind to its status and code. Anything
// without a known kind is logged and reported as an internal error.
func writeDomainError(w http.ResponseWriter, logger *log.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, codeValidation, domain.Message(err))
	case errors.Is(err, domain.ErrInvalidReference):
		writeError(w, http.StatusUnprocessableEntity, codeInvalidReference, domain.Message(err))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, domain.Message(err))
	default:
		if logger == nil {
			logger = log.Default()
		}
		logger.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON rejects unknown fields and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return false
	}
	if dec.More() {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return false
	}
	return true
}
