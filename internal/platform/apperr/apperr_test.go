package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestErrorCodesAndStatuses(t *testing.T) {
	tests := []struct {
		err    *Error
		code   string
		status int
	}{
		{NotFound("nationality %d not found", 7), CodeNotFound, http.StatusNotFound},
		{AlreadyExists("duplicate name"), CodeAlreadyExists, http.StatusConflict},
		{UniqueViolation("iin taken"), CodeUniqueViolation, http.StatusConflict},
		{AccessDenied("no permission"), CodeAccessDenied, http.StatusForbidden},
		{InvalidPagination("page must be positive"), CodeInvalidPagination, http.StatusUnprocessableEntity},
		{Validation("unsupported locale"), CodeValidation, http.StatusUnprocessableEntity},
		{Domain("asset already confirmed"), CodeDomain, http.StatusBadRequest},
	}
	for _, tt := range tests {
		if tt.err.Code != tt.code {
			t.Errorf("code = %s, want %s", tt.err.Code, tt.code)
		}
		if tt.err.HTTPStatus != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.code, tt.err.HTTPStatus, tt.status)
		}
	}
}

func TestIsHelpers(t *testing.T) {
	if !IsNotFound(NotFound("x")) {
		t.Error("IsNotFound should match")
	}
	if !IsAlreadyExists(AlreadyExists("x")) || !IsAlreadyExists(UniqueViolation("x")) {
		t.Error("IsAlreadyExists should match both duplicate codes")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("IsNotFound should not match plain errors")
	}
	wrapped := fmt.Errorf("load patient: %w", NotFound("patient missing"))
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should match wrapped errors")
	}
}

func TestWithDetailAndCause(t *testing.T) {
	cause := errors.New("db down")
	err := Internal(cause).WithDetail("op", "insert")
	if !errors.Is(err, cause) {
		t.Error("Unwrap should expose cause")
	}
	if err.Details["op"] != "insert" {
		t.Error("detail not recorded")
	}
}

func TestHTTPErrorHandler_AppError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := HTTPErrorHandler(zerolog.New(os.Stderr))
	handler(AlreadyExists("nationality already exists"), c)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var got body
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Code != CodeAlreadyExists {
		t.Errorf("body code = %s", got.Code)
	}
}

func TestHTTPErrorHandler_UnknownError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := HTTPErrorHandler(zerolog.New(os.Stderr))
	handler(errors.New("driver crashed"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var got body
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Message != "internal server error" {
		t.Errorf("internal details leaked: %q", got.Message)
	}
}
