package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{Validation("bad field"), http.StatusBadRequest},
		{BadRequest("bad"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{RateLimit("slow down"), http.StatusTooManyRequests},
		{Loading(nil), http.StatusServiceUnavailable},
		{Upstream(stderrors.New("503"), "upstream down"), http.StatusBadGateway},
		{Internal("oops"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			if tt.err.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", tt.err.StatusCode, tt.want)
			}
		})
	}
}

func TestWrap_Unwraps(t *testing.T) {
	cause := stderrors.New("root cause")
	err := fmt.Errorf("handler: %w", Wrap(cause, CodeInternal, "failed"))

	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause should be reachable through errors.Is")
	}
	var appErr *AppError
	if !stderrors.As(err, &appErr) || appErr.Code != CodeInternal {
		t.Errorf("expected AppError in chain, got %v", err)
	}
}

func TestWriteError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   ErrorCode
		retryAfter bool
	}{
		{"app error", Validation("invalid field"), http.StatusBadRequest, CodeValidation, false},
		{"wrapped app error", fmt.Errorf("ctx: %w", Loading(nil)), http.StatusServiceUnavailable, CodeServiceUnavail, true},
		{"plain error", stderrors.New("boom"), http.StatusInternalServerError, CodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, logger, tt.err, "req-1")

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Retry-After") != ""; got != tt.retryAfter {
				t.Errorf("Retry-After present = %v, want %v", got, tt.retryAfter)
			}

			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Success || body.Error.Code != tt.wantCode || body.Error.RequestID != "req-1" {
				t.Errorf("unexpected body: %+v", body.Error)
			}
		})
	}
}

func TestWriteSuccessWithHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccessWithHeaders(rec, map[string]int{"n": 1}, map[string]string{"X-Snapshot-Version": "3"})

	if rec.Header().Get("X-Snapshot-Version") != "3" {
		t.Error("custom header missing")
	}
	var body struct {
		Success bool           `json:"success"`
		Data    map[string]int `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.Data["n"] != 1 {
		t.Errorf("unexpected body: %+v", body)
	}
}
