package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/wolfman30/survey-assistant/internal/config"
	"github.com/wolfman30/survey-assistant/internal/oracle"
	"github.com/wolfman30/survey-assistant/pkg/logging"
)

// BuildLLMClient wires the oracle's language model from LLM_PROVIDER, wrapped
// with LLM_FALLBACK_PROVIDER when one is configured. The returned func
// releases provider connections.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (oracle.LLMClient, func(), error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	primary, closePrimary, err := buildProvider(ctx, cfg.LLMProvider, cfg, awsCfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("oracle provider configured", "provider", cfg.LLMProvider)

	fallbackName := cfg.LLMFallbackProvider
	if fallbackName == "" || fallbackName == cfg.LLMProvider {
		return primary, closePrimary, nil
	}
	fallback, closeFallback, err := buildProvider(ctx, fallbackName, cfg, awsCfg)
	if err != nil {
		logger.Warn("fallback oracle provider unavailable; continuing without it", "provider", fallbackName, "error", err)
		return primary, closePrimary, nil
	}
	logger.Info("oracle fallback configured", "provider", fallbackName)

	closeAll := func() {
		closePrimary()
		closeFallback()
	}
	return oracle.NewFallbackLLMClient(primary, fallback, logger.Logger), closeAll, nil
}

func buildProvider(ctx context.Context, name string, cfg *appconfig.Config, awsCfg *aws.Config) (oracle.LLMClient, func(), error) {
	noop := func() {}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "openai":
		client, err := oracle.NewOpenAILLMClient(oracle.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: %w", err)
		}
		return client, noop, nil
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return nil, nil, fmt.Errorf("bootstrap: GEMINI_API_KEY is required for the gemini provider")
		}
		client, err := oracle.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: %w", err)
		}
		return client, func() { _ = client.Close() }, nil
	case "bedrock":
		if strings.TrimSpace(cfg.BedrockModelID) == "" {
			return nil, nil, fmt.Errorf("bootstrap: BEDROCK_MODEL_ID is required for the bedrock provider")
		}
		if awsCfg == nil {
			return nil, nil, fmt.Errorf("bootstrap: aws config is required for the bedrock provider")
		}
		return oracle.NewBedrockLLMClient(bedrockruntime.NewFromConfig(*awsCfg), cfg.BedrockModelID), noop, nil
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown LLM provider %q", name)
	}
}

// NeedsAWS reports whether any configured component talks to AWS.
func NeedsAWS(cfg *appconfig.Config) bool {
	if cfg == nil {
		return false
	}
	return cfg.LLMProvider == "bedrock" ||
		cfg.LLMFallbackProvider == "bedrock" ||
		cfg.NotificationProvider == "ses" ||
		strings.TrimSpace(cfg.ArchiveS3Bucket) != ""
}
