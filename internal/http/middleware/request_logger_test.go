package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wolfman30/survey-assistant/pkg/logging"
)

func TestRequestLoggerRecordsStatusAndID(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithFormat("info", "json", &buf)
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/chat/abc", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "req-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["level"] != "ERROR" {
		t.Fatalf("expected ERROR level for 5xx, got %v", entry["level"])
	}
	if entry["status"] != float64(http.StatusServiceUnavailable) {
		t.Fatalf("expected status in log, got %v", entry["status"])
	}
	if entry["request_id"] != "req-123" {
		t.Fatalf("expected request id in log, got %v", entry["request_id"])
	}
}

func TestRequestLoggerGeneratesID(t *testing.T) {
	handler := RequestLogger(logging.NewWithFormat("error", "json", &bytes.Buffer{}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}
}
