package bootstrap

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/survey-assistant/internal/archive"
	"github.com/wolfman30/survey-assistant/internal/booking"
	appconfig "github.com/wolfman30/survey-assistant/internal/config"
	"github.com/wolfman30/survey-assistant/internal/oracle"
	"github.com/wolfman30/survey-assistant/internal/session"
	"github.com/wolfman30/survey-assistant/internal/survey"
	"github.com/wolfman30/survey-assistant/pkg/logging"
)

func quietLogger() *logging.Logger {
	return logging.NewWithFormat("error", "text", io.Discard)
}

type cannedLLM struct{ text string }

func (c cannedLLM) Complete(context.Context, oracle.LLMRequest) (oracle.LLMResponse, error) {
	return oracle.LLMResponse{Text: c.text}, nil
}

func TestBuildSessionStore(t *testing.T) {
	logger := quietLogger()

	store, locker, err := BuildSessionStore(&appconfig.Config{SessionBackend: "memory", SessionMaxEntries: 10, SessionTTL: time.Hour}, nil, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.(*session.MemoryStore); !ok {
		t.Fatalf("expected MemoryStore, got %T", store)
	}
	if _, ok := locker.(*session.KeyedMutex); !ok {
		t.Fatalf("expected KeyedMutex, got %T", locker)
	}

	if _, _, err := BuildSessionStore(&appconfig.Config{SessionBackend: "redis"}, nil, logger); err == nil {
		t.Fatalf("expected error when redis is unavailable")
	}
	if _, _, err := BuildSessionStore(&appconfig.Config{SessionBackend: "etcd"}, nil, logger); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if _, _, err := BuildSessionStore(nil, nil, logger); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestBuildSessionStoreRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store, locker, err := BuildSessionStore(&appconfig.Config{SessionBackend: "redis", SessionTTL: time.Hour, SessionLockTTL: time.Minute}, client, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.(*session.RedisStore); !ok {
		t.Fatalf("expected RedisStore, got %T", store)
	}
	if _, ok := locker.(*session.RedisLocker); !ok {
		t.Fatalf("expected RedisLocker, got %T", locker)
	}
}

func TestBuildRedisClientVerify(t *testing.T) {
	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, quietLogger(), true)
	if client == nil {
		t.Fatalf("expected client for reachable redis")
	}
	_ = client.Close()

	down, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	addr := down.Addr()
	down.Close()
	if client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: addr}, quietLogger(), true); client != nil {
		t.Fatalf("expected nil client for unreachable redis")
	}
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, quietLogger(), false); client != nil {
		t.Fatalf("expected nil client without address")
	}
}

func TestBuildLLMClient(t *testing.T) {
	ctx := context.Background()
	logger := quietLogger()

	if _, _, err := BuildLLMClient(ctx, &appconfig.Config{LLMProvider: "mystery"}, nil, logger); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
	if _, _, err := BuildLLMClient(ctx, &appconfig.Config{LLMProvider: "openai"}, nil, logger); err == nil {
		t.Fatalf("expected error for openai without key")
	}
	if _, _, err := BuildLLMClient(ctx, &appconfig.Config{LLMProvider: "bedrock", BedrockModelID: "m"}, nil, logger); err == nil {
		t.Fatalf("expected error for bedrock without aws config")
	}

	client, closeFn, err := BuildLLMClient(ctx, &appconfig.Config{
		LLMProvider:         "openai",
		OpenAIAPIKey:        "sk-test",
		LLMFallbackProvider: "gemini",
	}, nil, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()
	if _, ok := client.(*oracle.OpenAILLMClient); !ok {
		t.Fatalf("expected unusable fallback to be skipped, got %T", client)
	}
}

func TestNeedsAWS(t *testing.T) {
	if NeedsAWS(&appconfig.Config{LLMProvider: "openai", NotificationProvider: "api"}) {
		t.Fatalf("expected no aws dependency")
	}
	for _, cfg := range []*appconfig.Config{
		{LLMProvider: "bedrock"},
		{LLMFallbackProvider: "bedrock"},
		{NotificationProvider: "ses"},
		{ArchiveS3Bucket: "survey-archive"},
	} {
		if !NeedsAWS(cfg) {
			t.Fatalf("expected aws dependency for %+v", cfg)
		}
	}
}

func TestBuildNotifier(t *testing.T) {
	logger := quietLogger()

	if n := BuildNotifier(&appconfig.Config{NotificationProvider: "api"}, nil, logger); n != nil {
		t.Fatalf("expected nil notifier without api url, got %T", n)
	}
	if n := BuildNotifier(&appconfig.Config{NotificationProvider: "api", NotificationAPIURL: "http://notify.local"}, nil, logger); n == nil {
		t.Fatalf("expected api notifier")
	} else if _, ok := n.(*booking.NotificationAPIClient); !ok {
		t.Fatalf("expected NotificationAPIClient, got %T", n)
	}
	if n := BuildNotifier(&appconfig.Config{NotificationProvider: "sendgrid"}, nil, logger); n != nil {
		t.Fatalf("expected nil notifier without sendgrid key, got %T", n)
	}
	if n := BuildNotifier(&appconfig.Config{NotificationProvider: "stub"}, nil, logger); n == nil {
		t.Fatalf("expected stub notifier")
	} else if _, ok := n.(*booking.EmailNotifier); !ok {
		t.Fatalf("expected EmailNotifier, got %T", n)
	}
	if n := BuildNotifier(&appconfig.Config{NotificationProvider: "ses"}, nil, logger); n != nil {
		t.Fatalf("expected nil ses notifier without aws config, got %T", n)
	}
}

func TestBuildForwarder(t *testing.T) {
	if f := BuildForwarder(&appconfig.Config{}, quietLogger()); f != nil {
		t.Fatalf("expected nil forwarder without url")
	}
	if f := BuildForwarder(&appconfig.Config{WebhookURL: "http://hook.local"}, quietLogger()); f == nil {
		t.Fatalf("expected forwarder")
	}
}

func TestBuildArchiveWithoutSinks(t *testing.T) {
	a, err := BuildArchive(context.Background(), &appconfig.Config{ArchiveS3Bucket: "bucket"}, nil, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()
	if _, ok := a.Recorder.(archive.NoopRecorder); !ok {
		t.Fatalf("expected NoopRecorder, got %T", a.Recorder)
	}
	if a.PG != nil {
		t.Fatalf("expected no postgres store")
	}
}

func TestBuildRuntime(t *testing.T) {
	askName := true
	cfg := &appconfig.Config{
		SessionBackend:       "memory",
		SessionMaxEntries:    10,
		SessionTTL:           time.Hour,
		NotificationProvider: "stub",
		OracleTimeout:        time.Second,
	}

	rt, err := BuildRuntime(context.Background(), cfg, nil, quietLogger(), Overrides{
		LLM:            cannedLLM{text: "true"},
		AskPatientName: &askName,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rt.Close()

	reply, err := rt.Engine.ProcessTurn(context.Background(), "cli", "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Message != survey.LanguageMenu {
		t.Fatalf("expected language menu, got %q", reply.Message)
	}
	if rt.Registry == nil || rt.Metrics == nil {
		t.Fatalf("expected metrics to be wired")
	}
}

func TestBuildRuntimeRejectsBadCatalog(t *testing.T) {
	cfg := &appconfig.Config{SessionBackend: "memory", CatalogPath: "/does/not/exist.json"}
	if _, err := BuildRuntime(context.Background(), cfg, nil, quietLogger(), Overrides{LLM: cannedLLM{}}); err == nil {
		t.Fatalf("expected error for missing catalog file")
	}
}
