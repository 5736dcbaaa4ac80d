package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/survey-assistant/internal/archive"
	"github.com/wolfman30/survey-assistant/internal/conversation"
	"github.com/wolfman30/survey-assistant/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/survey-assistant/internal/http/middleware"
	"github.com/wolfman30/survey-assistant/internal/session"
	"github.com/wolfman30/survey-assistant/pkg/logging"
)

type echoService struct{}

func (echoService) ProcessTurn(_ context.Context, id, text string) (conversation.Reply, error) {
	return conversation.Reply{SessionID: id, Message: "you said " + text, Stage: session.StageLanguageSelect}, nil
}

func (echoService) Snapshot(_ context.Context, id string) (*session.Session, error) {
	return session.New(id, time.Now()), nil
}

func (echoService) Reset(context.Context, string) error { return nil }
func (echoService) Greeting() string                    { return "hello" }

type emptyLister struct{}

func (emptyLister) RecentBookings(context.Context, int) ([]archive.BookingRecord, error) {
	return nil, nil
}

func newTestRouter(t *testing.T, secret string) http.Handler {
	t.Helper()
	logger := logging.NewWithFormat("error", "json", io.Discard)
	return New(&Config{
		Logger:              logger,
		ConversationHandler: conversation.NewHandler(echoService{}, logger),
		MetricsHandler:      promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{}),
		RateLimitRPS:        100,
		RateLimitBurst:      100,
		OperatorSecret:      secret,
		BookingsHandler:     handlers.NewBookingsHandler(emptyLister{}, logger),
	})
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", resp["status"])
	}
}

func TestRouterChatEndpoint(t *testing.T) {
	router := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/chat/s-1", strings.NewReader(`{"content":"english"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	var reply conversation.Reply
	if err := json.NewDecoder(rr.Body).Decode(&reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if reply.SessionID != "s-1" || reply.Message != "you said english" {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if rr.Header().Get(httpmiddleware.RequestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, "")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterOperatorRoutes(t *testing.T) {
	router := newTestRouter(t, "ops-secret")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/chat/s-1", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected unauthenticated reset to be rejected, got %d", rr.Code)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "ops",
		Audience:  jwt.ClaimStrings{httpmiddleware.OperatorAudience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("ops-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/chat/s-1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterAdminHiddenWithoutSecret(t *testing.T) {
	router := newTestRouter(t, "")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/bookings", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestRouterAppliesCORSConfig(t *testing.T) {
	logger := logging.NewWithFormat("error", "json", io.Discard)
	h := New(&Config{
		Logger:              logger,
		ConversationHandler: conversation.NewHandler(echoService{}, logger),
		CORS: httpmiddleware.CORSConfig{
			AllowedOrigins: []string{"https://*.survey.example"},
			AllowedMethods: []string{"GET", "POST"},
		},
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat/abc", nil)
	req.Header.Set("Origin", "https://kiosk.survey.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected preflight 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Fatalf("expected configured methods, got %q", got)
	}
}
