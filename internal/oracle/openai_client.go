package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures the OpenAI adapter. BaseURL allows any
// OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAILLMClient implements LLMClient using the chat completions API.
type OpenAILLMClient struct {
	client *openai.Client
	model  string
}

func NewOpenAILLMClient(cfg OpenAIConfig) (*OpenAILLMClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("oracle: openai api key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}

	return &OpenAILLMClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

func (c *OpenAILLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	chatReq := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  buildOpenAIMessages(req),
		MaxTokens: int(req.MaxTokens),
	}
	switch {
	case req.Temperature > 0:
		chatReq.Temperature = req.Temperature
	case req.Temperature == 0:
		// go-openai drops a zero temperature from the payload.
		chatReq.Temperature = math.SmallestNonzeroFloat32
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("oracle: openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return LLMResponse{}, errors.New("oracle: openai returned no choices")
	}

	return LLMResponse{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		StopReason: string(resp.Choices[0].FinishReason),
		Usage: TokenUsage{
			InputTokens:  int32(resp.Usage.PromptTokens),
			OutputTokens: int32(resp.Usage.CompletionTokens),
			TotalTokens:  int32(resp.Usage.TotalTokens),
		},
	}, nil
}

func buildOpenAIMessages(req LLMRequest) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.System)+len(req.Messages))
	if system := strings.TrimSpace(strings.Join(req.System, "\n\n")); system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case ChatRoleAssistant:
			role = openai.ChatMessageRoleAssistant
		case ChatRoleSystem:
			role = openai.ChatMessageRoleSystem
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}
	return messages
}
