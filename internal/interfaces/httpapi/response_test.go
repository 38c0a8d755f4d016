package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/astatracker/fantacalcio-api/internal/usecase"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{usecase.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
		{usecase.ErrMissingToken, http.StatusUnauthorized, "MISSING_TOKEN"},
		{usecase.ErrInvalidToken, http.StatusForbidden, "INVALID_TOKEN"},
		{usecase.ErrInactiveUser, http.StatusForbidden, "INACTIVE_USER"},
		{usecase.ErrNotMember, http.StatusForbidden, "NOT_MEMBER"},
		{usecase.ErrPermissionDenied, http.StatusForbidden, "PERMISSION_DENIED"},
		{usecase.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{usecase.ErrAlreadyMember, http.StatusConflict, "ALREADY_MEMBER"},
		{usecase.ErrLeagueFull, http.StatusConflict, "LEAGUE_FULL"},
		{usecase.ErrDuplicate, http.StatusConflict, "DUPLICATE"},
		{usecase.ErrDependencyUnavailable, http.StatusServiceUnavailable, "DEPENDENCY_UNAVAILABLE"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		// Wrapped errors must map the same as bare sentinels.
		mapped := mapError(context.Background(), fmt.Errorf("context: %w", tc.err))
		if mapped.HTTPStatus != tc.status || mapped.Code != tc.code {
			t.Fatalf("%v: expected %d/%s, got %d/%s", tc.err, tc.status, tc.code, mapped.HTTPStatus, mapped.Code)
		}
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: league not found", usecase.ErrNotFound))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}

	var body errorBody
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body failed: %v", err)
	}
	if body.Code != "NOT_FOUND" {
		t.Fatalf("expected code NOT_FOUND, got %s", body.Code)
	}
	if body.Error != "resource not found: league not found" {
		t.Fatalf("unexpected error message %q", body.Error)
	}
}
