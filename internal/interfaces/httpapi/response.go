package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/astatracker/fantacalcio-api/internal/usecase"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type mappedError struct {
	HTTPStatus int
	Code       string
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	writeJSON(ctx, w, mapped.HTTPStatus, errorBody{
		Error: err.Error(),
		Code:  mapped.Code,
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	writeJSON(ctx, w, http.StatusInternalServerError, errorBody{
		Error: "internal server error",
		Code:  "INTERNAL",
	})
}

func mapError(ctx context.Context, err error) mappedError {
	ctx, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return mappedError{HTTPStatus: http.StatusBadRequest, Code: "INVALID_INPUT"}
	case errors.Is(err, usecase.ErrMissingToken):
		return mappedError{HTTPStatus: http.StatusUnauthorized, Code: "MISSING_TOKEN"}
	case errors.Is(err, usecase.ErrInvalidToken):
		return mappedError{HTTPStatus: http.StatusForbidden, Code: "INVALID_TOKEN"}
	case errors.Is(err, usecase.ErrInactiveUser):
		return mappedError{HTTPStatus: http.StatusForbidden, Code: "INACTIVE_USER"}
	case errors.Is(err, usecase.ErrNotMember):
		return mappedError{HTTPStatus: http.StatusForbidden, Code: "NOT_MEMBER"}
	case errors.Is(err, usecase.ErrPermissionDenied):
		return mappedError{HTTPStatus: http.StatusForbidden, Code: "PERMISSION_DENIED"}
	case errors.Is(err, usecase.ErrNotFound):
		return mappedError{HTTPStatus: http.StatusNotFound, Code: "NOT_FOUND"}
	case errors.Is(err, usecase.ErrAlreadyMember):
		return mappedError{HTTPStatus: http.StatusConflict, Code: "ALREADY_MEMBER"}
	case errors.Is(err, usecase.ErrLeagueFull):
		return mappedError{HTTPStatus: http.StatusConflict, Code: "LEAGUE_FULL"}
	case errors.Is(err, usecase.ErrDuplicate):
		return mappedError{HTTPStatus: http.StatusConflict, Code: "DUPLICATE"}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{HTTPStatus: http.StatusServiceUnavailable, Code: "DEPENDENCY_UNAVAILABLE"}
	default:
		return mappedError{HTTPStatus: http.StatusInternalServerError, Code: "INTERNAL"}
	}
}
