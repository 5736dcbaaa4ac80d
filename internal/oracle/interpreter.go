package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/survey-assistant/internal/survey"
	"github.com/wolfman30/survey-assistant/pkg/logging"
)

const defaultOracleTimeout = 20 * time.Second

// Result is the oracle's reading of one answer. Canonical is set only when
// Valid; Raw keeps the model's trimmed reply.
type Result struct {
	Valid     bool
	Canonical string
	Raw       string
}

// Rejected reports whether the model refused to map the answer at all.
func (r Result) Rejected() bool {
	return r.Raw == "" || strings.EqualFold(r.Raw, Invalid)
}

// Observer receives one sample per oracle call.
type Observer interface {
	ObserveOracleCall(op, result string, elapsed time.Duration)
}

type InterpreterConfig struct {
	Model    string
	Timeout  time.Duration
	Observer Observer
}

// Interpreter turns free-text answers into catalog options using an LLM.
type Interpreter struct {
	llm      LLMClient
	model    string
	timeout  time.Duration
	observer Observer
	logger   *logging.Logger
}

func NewInterpreter(llm LLMClient, cfg InterpreterConfig, logger *logging.Logger) *Interpreter {
	if llm == nil {
		panic("oracle: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultOracleTimeout
	}
	return &Interpreter{
		llm:      llm,
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		observer: cfg.Observer,
		logger:   logger,
	}
}

// Validate asks whether raw answers q. Any failure counts as invalid.
func (i *Interpreter) Validate(ctx context.Context, q survey.Question, raw string, lang survey.Language) bool {
	text, err := i.ask(ctx, "validate", fmt.Sprintf(validateSystemPrompt, languageName(lang)), questionPrompt(q, raw))
	if err != nil {
		i.logger.Warn("validation failed closed", "question_id", q.ID, "error", err)
		return false
	}
	verdict, ok := parseBool(text)
	if !ok {
		i.logger.Warn("validation reply was not a boolean", "question_id", q.ID, "reply", text)
		return false
	}
	return verdict
}

// Interpret maps raw onto one of q's options. A reply that names no option
// yields a Result with Valid false; only oracle failures return an error.
func (i *Interpreter) Interpret(ctx context.Context, q survey.Question, raw string, lang survey.Language) (Result, error) {
	text, err := i.ask(ctx, "interpret", fmt.Sprintf(interpretSystemPrompt, languageName(lang)), questionPrompt(q, raw))
	if err != nil {
		return Result{}, fmt.Errorf("%w: interpret question %d: %v", ErrOracleUnavailable, q.ID, err)
	}

	result := Result{Raw: strings.TrimSpace(text)}
	if result.Rejected() {
		return result, nil
	}
	if canonical, ok := q.Options.Canonical(result.Raw, q.MultiSelect); ok {
		result.Valid = true
		result.Canonical = canonical
	}
	return result, nil
}

// IsOffTopic reports whether raw is unrelated to q.
func (i *Interpreter) IsOffTopic(ctx context.Context, q survey.Question, raw string) (bool, error) {
	text, err := i.ask(ctx, "offtopic", offTopicSystemPrompt, questionPrompt(q, raw))
	if err != nil {
		return false, fmt.Errorf("%w: off-topic check: %v", ErrOracleUnavailable, err)
	}
	verdict, _ := parseBool(text)
	return verdict, nil
}

func (i *Interpreter) ask(ctx context.Context, op, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	start := time.Now()
	resp, err := i.llm.Complete(ctx, LLMRequest{
		Model:       i.model,
		System:      []string{system},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: user}},
		MaxTokens:   128,
		Temperature: 0,
	})
	if err == nil && strings.TrimSpace(resp.Text) == "" {
		err = errors.New("empty completion")
	}
	i.observe(op, err, time.Since(start))
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (i *Interpreter) observe(op string, err error, elapsed time.Duration) {
	if i.observer == nil {
		return
	}
	result := "ok"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		result = "timeout"
	case err != nil:
		result = "error"
	}
	i.observer.ObserveOracleCall(op, result, elapsed)
}

func parseBool(text string) (bool, bool) {
	switch strings.ToLower(strings.Trim(strings.TrimSpace(text), "\"'`.")) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

func languageName(lang survey.Language) string {
	if lang.Name == "" {
		return survey.English.Name
	}
	return lang.Name
}
