package httputil

import (
	"errors"
	"net/http"

	"github.com/bytedance/sonic"
	errorvalues "github.com/limbo/questlog/internal/error_values"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string, details error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Code:    statusCode,
		Message: message,
	}

	if details != nil {
		resp.Details = details.Error()
	}

	sonic.ConfigFastest.NewEncoder(w).Encode(resp)
}

func WriteJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if body != nil {
		sonic.ConfigDefault.NewEncoder(w).Encode(body)
	}
}

// StatusForError maps the domain's sentinel errors onto HTTP statuses.
// Validation and domain errors are the caller's fault, unknown ids are 404,
// everything else (including transport errors surfaced unchanged from the
// persistence layer) is a 500.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, errorvalues.ErrEmptyName),
		errors.Is(err, errorvalues.ErrProgressOutOfRange),
		errors.Is(err, errorvalues.ErrPriorityOutOfRange),
		errors.Is(err, errorvalues.ErrInvalidStatus),
		errors.Is(err, errorvalues.ErrNegativeExperience),
		errors.Is(err, errorvalues.ErrInvalidLevel):
		return http.StatusBadRequest
	case errors.Is(err, errorvalues.ErrQuestNotFound),
		errors.Is(err, errorvalues.ErrSubtaskNotFound),
		errors.Is(err, errorvalues.ErrProgressionNotFound),
		errors.Is(err, errorvalues.ErrWrongOwner):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
