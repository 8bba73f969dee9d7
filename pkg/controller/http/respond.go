package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/trm-lab/argus/pkg/usecase"
	"github.com/trm-lab/argus/pkg/utils/errutil"
)

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func respondData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(successEnvelope{Success: true, Data: data}) //nolint:errcheck // header already committed
}

// respondError translates use case errors into the error taxonomy.
// Domain errors carry their message to the caller; everything else is
// logged and reported as an internal error.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)

	message := "internal server error"
	if status != http.StatusInternalServerError {
		message = err.Error()
	} else {
		errutil.Handle(r.Context(), err, "request failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorEnvelope{Success: false, Error: message}) //nolint:errcheck
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrVendorNotFound),
		errors.Is(err, usecase.ErrWorkflowNotFound),
		errors.Is(err, usecase.ErrStepNotFound),
		errors.Is(err, usecase.ErrIssueNotFound),
		errors.Is(err, usecase.ErrSignalNotFound),
		errors.Is(err, usecase.ErrAppetiteNotFound):
		return http.StatusNotFound

	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, usecase.ErrEmptyApprovalChain):
		return http.StatusBadRequest

	case errors.Is(err, usecase.ErrStepAlreadyDecided),
		errors.Is(err, usecase.ErrWorkflowCompleted),
		errors.Is(err, usecase.ErrWorkflowAlreadyActive),
		errors.Is(err, usecase.ErrCannotCancelCompleted),
		errors.Is(err, usecase.ErrOutOfOrderDecision):
		return http.StatusConflict

	case errors.Is(err, usecase.ErrOpenIssuesRemain),
		errors.Is(err, usecase.ErrIssueCompleted),
		errors.Is(err, usecase.ErrValidationNotRequested),
		errors.Is(err, usecase.ErrInvalidStatusChange):
		return http.StatusUnprocessableEntity

	case errors.Is(err, usecase.ErrPermissionDenied):
		return http.StatusForbidden

	default:
		return http.StatusInternalServerError
	}
}

// decode unmarshals a JSON request body into dst
func decode(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
