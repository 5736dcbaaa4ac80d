package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/survey-assistant/internal/survey"
	"github.com/wolfman30/survey-assistant/pkg/logging"
)

type PromptKind string

const (
	PromptAsk       PromptKind = "ask"
	PromptReprompt  PromptKind = "reprompt"
	PromptOffTopic  PromptKind = "offtopic"
	PromptStatement PromptKind = "statement"
)

// Prompt is one assistant utterance before it is phrased for the user.
// Options is the described option set for question prompts.
type Prompt struct {
	Kind     PromptKind
	Language survey.Language
	Text     string
	Options  string
}

// QuestionPrompt builds an ask/reprompt/off-topic prompt for q.
func QuestionPrompt(kind PromptKind, q survey.Question, lang survey.Language) Prompt {
	return Prompt{Kind: kind, Language: lang, Text: q.Text, Options: q.Options.Describe()}
}

// Statement builds a prompt for fixed text that only needs translating.
func Statement(text string, lang survey.Language) Prompt {
	return Prompt{Kind: PromptStatement, Language: lang, Text: text}
}

// Renderer phrases prompts for the conversant.
type Renderer interface {
	Render(ctx context.Context, p Prompt) string
}

// PlainRenderer renders deterministic English text.
type PlainRenderer struct{}

func (PlainRenderer) Render(_ context.Context, p Prompt) string {
	switch p.Kind {
	case PromptAsk:
		return withOptions(p.Text, "Options", p.Options)
	case PromptReprompt:
		return withOptions("Sorry, that answer doesn't match the options. "+p.Text, "Valid options", p.Options)
	case PromptOffTopic:
		return withOptions("Let's get back to the survey. "+p.Text, "Options", p.Options)
	default:
		return p.Text
	}
}

func withOptions(text, label, options string) string {
	if options == "" || options == survey.Open().Describe() {
		return text
	}
	return fmt.Sprintf("%s\n%s: %s", text, label, options)
}

// LLMRenderer asks the model to phrase each prompt in the conversant's
// language. English statements pass through untouched. Any failure falls
// back to PlainRenderer output.
type LLMRenderer struct {
	llm     LLMClient
	model   string
	timeout time.Duration
	plain   PlainRenderer
	logger  *logging.Logger
}

func NewLLMRenderer(llm LLMClient, model string, timeout time.Duration, logger *logging.Logger) *LLMRenderer {
	if llm == nil {
		panic("oracle: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = defaultOracleTimeout
	}
	return &LLMRenderer{llm: llm, model: model, timeout: timeout, logger: logger}
}

func (r *LLMRenderer) Render(ctx context.Context, p Prompt) string {
	fallback := r.plain.Render(ctx, p)
	if p.Kind == PromptStatement && (p.Language.Code == "" || p.Language.Code == survey.English.Code) {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.llm.Complete(ctx, LLMRequest{
		Model:       r.model,
		System:      []string{fmt.Sprintf(renderSystemPrompt, languageName(p.Language))},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: renderPrompt(p)}},
		MaxTokens:   512,
		Temperature: 0.7,
	})
	if err != nil {
		r.logger.Warn("render fell back to plain text", "kind", string(p.Kind), "error", err)
		return fallback
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return fallback
	}
	return text
}
