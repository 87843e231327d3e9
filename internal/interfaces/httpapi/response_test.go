package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/match-analysis/internal/usecase"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestWriteSuccess_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, "ok", map[string]string{"id": "m1"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["status"] != "success" || body["message"] != "ok" {
		t.Fatalf("unexpected envelope: %v", body)
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["errors"]; ok {
		t.Fatalf("did not expect errors key in success response")
	}
}

func TestWriteSuccess_EmptyListKeepsData(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, "ok", []matchSummaryDTO{})

	body := decodeBody(t, rec)
	items, ok := body["data"].([]any)
	if !ok || len(items) != 0 {
		t.Fatalf("expected empty data array, got %v", body["data"])
	}
}

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid input", err: fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput), want: http.StatusBadRequest},
		{name: "not found", err: fmt.Errorf("%w: match=m1", usecase.ErrNotFound), want: http.StatusNotFound},
		{name: "unauthorized", err: usecase.ErrUnauthorized, want: http.StatusUnauthorized},
		{name: "forbidden", err: usecase.ErrForbidden, want: http.StatusForbidden},
		{name: "conflict", err: usecase.ErrConflict, want: http.StatusConflict},
		{name: "dependency", err: usecase.ErrDependencyUnavailable, want: http.StatusServiceUnavailable},
		{name: "unknown", err: errors.New("pq: connection refused"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(context.Background(), rec, tt.err)

			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, rec.Code)
			}
			body := decodeBody(t, rec)
			if body["status"] != "error" {
				t.Fatalf("expected error status, got %v", body["status"])
			}
		})
	}
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, errors.New("pq: password authentication failed"))

	body := decodeBody(t, rec)
	if body["message"] != "internal server error" {
		t.Fatalf("expected generic message, got %v", body["message"])
	}
}

func TestWriteError_ValidationFields(t *testing.T) {
	verr := &usecase.ValidationError{}
	verr.Add("clubs[0].name", "club name is required")
	verr.Add("videoUrl", "video url is required")

	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, verr)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	items, ok := body["errors"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("expected two field errors, got %v", body["errors"])
	}
	first, _ := items[0].(map[string]any)
	if first["path"] != "clubs[0].name" || first["message"] != "club name is required" {
		t.Fatalf("unexpected field error: %v", first)
	}
}
