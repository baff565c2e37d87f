package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/stemcapstone/smartgoals/internal/ctxkeys"
	"github.com/stemcapstone/smartgoals/internal/lifecycle"
	"github.com/stemcapstone/smartgoals/internal/repository"
	"github.com/stemcapstone/smartgoals/internal/service"
)

// Error codes of the JSON error envelope.
const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeValidation      = "validation_failed"
	ErrCodeForbidden       = "forbidden"
	ErrCodeGoalLocked      = "goal_locked"
	ErrCodeNotFound        = "not_found"
	ErrCodeConflict        = "already_member"
	ErrCodeUnavailable     = "store_unavailable"
	ErrCodeStorageDisabled = "storage_disabled"
	ErrCodeInternal        = "internal"
)

const maxBodyBytes = 1 << 20

type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Fields  []lifecycle.FieldError `json:"fields,omitempty"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write json response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, e APIError) {
	writeJSON(w, status, ErrorResponse{Error: e})
}

// fail maps a service error onto a status code and error envelope.
// Unclassified errors are logged and reported as internal.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr   *lifecycle.ValidationError
		locked *lifecycle.LockedError
	)

	switch {
	case errors.Is(err, repository.ErrAlreadyMember):
		writeError(w, http.StatusConflict, APIError{Code: ErrCodeConflict, Message: "Already a member of this group"})
	case errors.As(err, &verr):
		writeError(w, http.StatusUnprocessableEntity, APIError{Code: ErrCodeValidation, Message: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, lifecycle.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, APIError{Code: ErrCodeValidation, Message: err.Error()})
	case errors.As(err, &locked):
		writeError(w, http.StatusForbidden, APIError{
			Code:    ErrCodeGoalLocked,
			Message: fmt.Sprintf("Goal is %s and can no longer be edited", locked.Status),
		})
	case errors.Is(err, lifecycle.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, APIError{Code: ErrCodeForbidden, Message: "You don't have access to this"})
	case errors.Is(err, lifecycle.ErrNotFound):
		writeError(w, http.StatusNotFound, APIError{Code: ErrCodeNotFound, Message: "Not found"})
	case errors.Is(err, service.ErrStorageDisabled):
		writeError(w, http.StatusServiceUnavailable, APIError{Code: ErrCodeStorageDisabled, Message: "File uploads are not available"})
	case errors.Is(err, lifecycle.ErrStoreUnavailable):
		slog.Error("store unavailable", "error", err, "path", r.URL.Path, "request_id", ctxkeys.RequestID(r.Context()))
		writeError(w, http.StatusServiceUnavailable, APIError{Code: ErrCodeUnavailable, Message: "Please try again in a moment"})
	default:
		slog.Error("request failed", "error", err, "path", r.URL.Path, "request_id", ctxkeys.RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, APIError{Code: ErrCodeInternal, Message: "Something went wrong"})
	}
}

func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, APIError{Code: ErrCodeBadRequest, Message: message})
}

// decode reads a JSON body into dst. An empty body leaves dst untouched.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "Invalid JSON body: "+err.Error())
		return false
	}
	return true
}
