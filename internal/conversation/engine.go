// Package conversation drives a conversant through language choice, consent,
// the survey and appointment booking, one turn at a time.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/survey-assistant/internal/archive"
	"github.com/wolfman30/survey-assistant/internal/booking"
	"github.com/wolfman30/survey-assistant/internal/oracle"
	"github.com/wolfman30/survey-assistant/internal/session"
	"github.com/wolfman30/survey-assistant/internal/survey"
	"github.com/wolfman30/survey-assistant/pkg/logging"
)

// ErrSessionNotFound is returned by Snapshot for an unknown session id.
var ErrSessionNotFound = errors.New("conversation: session not found")

// Interpreter is the semantic-matching oracle as the engine uses it.
type Interpreter interface {
	Validate(ctx context.Context, q survey.Question, raw string, lang survey.Language) bool
	Interpret(ctx context.Context, q survey.Question, raw string, lang survey.Language) (oracle.Result, error)
	IsOffTopic(ctx context.Context, q survey.Question, raw string) (bool, error)
}

// Metrics receives per-turn counters. *metrics.SurveyMetrics satisfies it.
type Metrics interface {
	ObserveTurn(stage, outcome string)
	ObserveBooking(succeeded bool)
	ObserveNotification(succeeded bool)
}

const (
	outcomeAdvanced  = "advanced"
	outcomeReprompt  = "reprompt"
	outcomeOffTopic  = "offtopic"
	outcomeCompleted = "completed"
	outcomeError     = "error"
)

type Options struct {
	Catalog     *survey.Catalog
	Interpreter Interpreter
	Renderer    oracle.Renderer
	Store       session.Store
	Locker      session.Locker
	Scheduler   booking.Scheduler
	Notifier    booking.Notifier
	Providers   []booking.Provider
	Recorder    archive.Recorder
	Forwarder   ReplyForwarder
	Metrics     Metrics

	// AskPatientName collects the name after the survey; otherwise
	// DefaultPatientName is booked.
	AskPatientName     bool
	DefaultPatientName string
	OffTopicCheck      bool
	Duration           time.Duration
	Clock              func() time.Time

	Tracer trace.Tracer
	Logger *logging.Logger
}

// Reply is the assistant's answer to one turn.
type Reply struct {
	SessionID string        `json:"session_id"`
	Message   string        `json:"message"`
	Stage     session.Stage `json:"stage"`
}

// Engine runs conversation turns. It is safe for concurrent use; turns for
// the same session are serialised through the Locker.
type Engine struct {
	catalog     *survey.Catalog
	navigator   *survey.Navigator
	interpreter Interpreter
	renderer    oracle.Renderer
	store       session.Store
	locker      session.Locker
	scheduler   booking.Scheduler
	notifier    booking.Notifier
	providers   []booking.Provider
	provider    survey.Question
	recorder    archive.Recorder
	forwarder   ReplyForwarder
	metrics     Metrics

	askName     bool
	defaultName string
	offTopic    bool
	duration    time.Duration
	now         func() time.Time

	tracer trace.Tracer
	logger *logging.Logger
}

func NewEngine(opts Options) (*Engine, error) {
	switch {
	case opts.Catalog == nil:
		return nil, errors.New("conversation: catalog is required")
	case opts.Interpreter == nil:
		return nil, errors.New("conversation: interpreter is required")
	case opts.Store == nil:
		return nil, errors.New("conversation: session store is required")
	case opts.Scheduler == nil:
		return nil, errors.New("conversation: scheduler is required")
	}

	e := &Engine{
		catalog:     opts.Catalog,
		navigator:   survey.NewNavigator(opts.Catalog),
		interpreter: opts.Interpreter,
		renderer:    opts.Renderer,
		store:       opts.Store,
		locker:      opts.Locker,
		scheduler:   opts.Scheduler,
		notifier:    opts.Notifier,
		providers:   opts.Providers,
		recorder:    opts.Recorder,
		forwarder:   opts.Forwarder,
		metrics:     opts.Metrics,
		askName:     opts.AskPatientName,
		defaultName: opts.DefaultPatientName,
		offTopic:    opts.OffTopicCheck,
		duration:    opts.Duration,
		now:         opts.Clock,
		tracer:      opts.Tracer,
		logger:      opts.Logger,
	}
	if e.renderer == nil {
		e.renderer = oracle.PlainRenderer{}
	}
	if e.locker == nil {
		e.locker = session.NewKeyedMutex()
	}
	if len(e.providers) == 0 {
		e.providers = booking.DefaultProviders
	}
	e.provider = booking.ProviderQuestion(e.providers)
	if e.recorder == nil {
		e.recorder = archive.NoopRecorder{}
	}
	if e.metrics == nil {
		e.metrics = noopMetrics{}
	}
	if e.defaultName == "" {
		e.defaultName = "Patient"
	}
	if e.duration <= 0 {
		e.duration = booking.DefaultDuration
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer("survey-assistant/conversation")
	}
	if e.logger == nil {
		e.logger = logging.Default()
	}

	for _, ref := range opts.Catalog.DanglingReferences() {
		e.logger.Warn("catalog reference does not resolve; it will end the survey", "reference", ref)
	}
	return e, nil
}

// Greeting is the first message shown before any input.
func (e *Engine) Greeting() string {
	return survey.LanguageMenu
}

// turn carries the mutable state of one ProcessTurn call.
type turn struct {
	sess    *session.Session
	isNew   bool
	outcome string
	// booked is set once external side effects have run, after which the
	// reply must be delivered even if persisting the session fails.
	booked bool
}

// ProcessTurn applies one conversant message and returns the reply. On error
// the stored session is left unchanged.
func (e *Engine) ProcessTurn(ctx context.Context, sessionID, text string) (Reply, error) {
	ctx, span := e.tracer.Start(ctx, "conversation.turn")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID))

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Reply{}, errors.New("conversation: session id is required")
	}

	unlock, err := e.locker.Lock(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lock failed")
		return Reply{}, err
	}
	defer unlock()

	stored, err := e.store.Get(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return Reply{}, fmt.Errorf("conversation: load session: %w", err)
	}

	t := &turn{outcome: outcomeAdvanced}
	if stored == nil {
		t.sess = session.New(sessionID, e.now())
		t.isNew = true
	} else {
		t.sess = stored.Clone()
	}
	stage := t.sess.Stage
	logger := e.logger.WithSession(sessionID)

	message, err := e.step(ctx, t, strings.TrimSpace(text))
	if err != nil {
		e.metrics.ObserveTurn(string(stage), outcomeError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "turn failed")
		logger.Error("conversation turn failed", "stage", stage, "error", err)
		return Reply{}, err
	}

	t.sess.UpdatedAt = e.now()
	putCtx := ctx
	if t.booked {
		putCtx = context.WithoutCancel(ctx)
	}
	if err := e.store.Put(putCtx, t.sess); err != nil {
		if !t.booked {
			span.RecordError(err)
			span.SetStatus(codes.Error, "save failed")
			return Reply{}, fmt.Errorf("conversation: save session: %w", err)
		}
		logger.Error("failed to persist session after booking", "error", err)
	}

	e.metrics.ObserveTurn(string(stage), t.outcome)
	span.SetAttributes(
		attribute.String("conversation.stage", string(t.sess.Stage)),
		attribute.String("conversation.outcome", t.outcome),
	)
	logger.Debug("conversation turn", "from", stage, "to", t.sess.Stage, "outcome", t.outcome)

	reply := Reply{SessionID: sessionID, Message: message, Stage: t.sess.Stage}
	e.forward(ctx, reply)
	return reply, nil
}

func (e *Engine) step(ctx context.Context, t *turn, text string) (string, error) {
	switch t.sess.Stage {
	case session.StageLanguageSelect:
		return e.selectLanguage(ctx, t, text), nil
	case session.StageAwaitingConsent:
		return e.consent(ctx, t, text), nil
	case session.StageInSurvey:
		return e.answer(ctx, t, text)
	case session.StageBookingNotStarted:
		return e.patientName(ctx, t, text), nil
	case session.StageSelectingProvider:
		return e.selectProvider(ctx, t, text)
	case session.StageSelectingTime:
		return e.selectTime(ctx, t, text), nil
	case session.StageBookingCompleted:
		t.outcome = outcomeCompleted
		return e.say(ctx, t.sess, alreadyBooked), nil
	default:
		return "", fmt.Errorf("conversation: unknown stage %q", t.sess.Stage)
	}
}

func (e *Engine) selectLanguage(ctx context.Context, t *turn, text string) string {
	lang, ok := survey.LookupLanguage(text)
	if !ok {
		t.outcome = outcomeReprompt
		if t.isNew {
			return survey.LanguageMenu
		}
		return survey.InvalidLanguageReply
	}
	t.sess.Language = lang
	t.sess.Stage = session.StageAwaitingConsent
	return e.renderer.Render(ctx, oracle.Prompt{
		Kind:     oracle.PromptAsk,
		Language: lang,
		Text:     consentText,
		Options:  consentOptions,
	})
}

func (e *Engine) consent(ctx context.Context, t *turn, text string) string {
	if !survey.IsAffirmative(text) {
		t.outcome = outcomeReprompt
		return e.say(ctx, t.sess, consentRetry)
	}
	first := e.catalog.First()
	t.sess.Stage = session.StageInSurvey
	t.sess.CurrentQuestionID = first.ID
	return e.ask(ctx, t.sess, oracle.PromptAsk, first)
}

func (e *Engine) answer(ctx context.Context, t *turn, text string) (string, error) {
	sess := t.sess
	q, ok := e.catalog.Lookup(sess.CurrentQuestionID)
	if !ok {
		e.logger.Warn("current question missing from catalog; ending survey",
			"session_id", sess.ID, "question_id", sess.CurrentQuestionID)
		return e.completeSurvey(ctx, t), nil
	}

	if e.offTopic {
		off, err := e.interpreter.IsOffTopic(ctx, q, text)
		if err != nil {
			e.logger.Warn("off-topic check failed", "session_id", sess.ID, "error", err)
		} else if off {
			t.outcome = outcomeOffTopic
			return e.ask(ctx, sess, oracle.PromptOffTopic, q), nil
		}
	}

	if !e.interpreter.Validate(ctx, q, text, sess.Language) {
		t.outcome = outcomeReprompt
		return e.ask(ctx, sess, oracle.PromptReprompt, q), nil
	}
	result, err := e.interpreter.Interpret(ctx, q, text, sess.Language)
	if err != nil {
		return "", err
	}
	if !result.Valid {
		e.logger.Info("answer validated but did not interpret", "session_id", sess.ID, "question_id", q.ID, "reply", result.Raw)
		t.outcome = outcomeReprompt
		return e.ask(ctx, sess, oracle.PromptReprompt, q), nil
	}

	sess.Answers[q.ID] = result.Canonical
	next := e.navigator.Next(q.ID, result.Canonical)
	if next.Terminal {
		if next.Reason != survey.ReasonExhausted {
			e.logger.Warn("survey ended on unresolved reference",
				"session_id", sess.ID, "question_id", q.ID, "reason", next.Reason)
		}
		return e.completeSurvey(ctx, t), nil
	}

	nextQ, _ := e.catalog.Lookup(next.NextID)
	sess.CurrentQuestionID = nextQ.ID
	return e.ask(ctx, sess, oracle.PromptAsk, nextQ), nil
}

func (e *Engine) completeSurvey(ctx context.Context, t *turn) string {
	sess := t.sess
	sess.CurrentQuestionID = 0
	sess.Stage = session.StageBookingNotStarted

	rec := archive.SurveyRecord{
		ID:          uuid.NewString(),
		SessionID:   sess.ID,
		Language:    sess.Language.Code,
		Answers:     make(map[int]string, len(sess.Answers)),
		CompletedAt: e.now().UTC(),
	}
	for k, v := range sess.Answers {
		rec.Answers[k] = v
	}
	if err := e.recorder.RecordSurvey(context.WithoutCancel(ctx), rec); err != nil {
		e.logger.Warn("failed to record survey", "session_id", sess.ID, "error", err)
	}

	if e.askName {
		return e.say(ctx, sess, namePrompt)
	}
	sess.PatientName = e.defaultName
	sess.Stage = session.StageSelectingProvider
	return e.say(ctx, sess, fixedNameProviderPrompt(e.providers))
}

func (e *Engine) patientName(ctx context.Context, t *turn, text string) string {
	if text == "" {
		t.outcome = outcomeReprompt
		return e.say(ctx, t.sess, nameRetryPrompt)
	}
	t.sess.PatientName = text
	t.sess.Stage = session.StageSelectingProvider
	return e.say(ctx, t.sess, providerPrompt(e.providers))
}

func (e *Engine) selectProvider(ctx context.Context, t *turn, text string) (string, error) {
	sess := t.sess
	retry := func() string {
		t.outcome = outcomeReprompt
		return e.say(ctx, sess, providerRetryText+providerPrompt(e.providers))
	}

	if !e.interpreter.Validate(ctx, e.provider, text, sess.Language) {
		return retry(), nil
	}
	result, err := e.interpreter.Interpret(ctx, e.provider, text, sess.Language)
	if err != nil {
		return "", err
	}
	if result.Rejected() {
		return retry(), nil
	}
	p, ok := booking.MatchProvider(e.providers, result.Raw)
	if !ok {
		return retry(), nil
	}

	sess.SelectedProvider = p.Name
	sess.Stage = session.StageSelectingTime
	return e.say(ctx, sess, timePrompt), nil
}

func (e *Engine) selectTime(ctx context.Context, t *turn, text string) string {
	sess := t.sess
	if !booking.ValidTime(text) {
		t.outcome = outcomeReprompt
		return e.say(ctx, sess, timeRetryPrompt)
	}
	slot, err := booking.TomorrowAt(text, e.now(), e.duration)
	if err != nil {
		t.outcome = outcomeReprompt
		return e.say(ctx, sess, timeRetryPrompt)
	}

	provider := e.lookupProvider(sess.SelectedProvider)
	appt := booking.Appointment{Provider: provider, PatientName: sess.PatientName, Slot: slot}

	// The appointment must not be half-booked because the caller went away.
	sideCtx := context.WithoutCancel(ctx)
	result := e.scheduler.Book(sideCtx, appt)
	e.metrics.ObserveBooking(result.Succeeded)

	outcome := &session.BookingOutcome{
		Provider:   provider.Name,
		Date:       slot.Date,
		StartTime:  slot.StartTime,
		EndTime:    slot.EndTime,
		Succeeded:  result.Succeeded,
		StatusCode: result.StatusCode,
		Message:    result.Message,
	}
	message := result.Message
	if result.Succeeded && e.notifier != nil {
		if err := e.notifier.Notify(sideCtx, booking.NotificationFor(appt)); err != nil {
			outcome.NotifyResult = booking.FailedNotificationMessage(err)
			e.logger.Warn("appointment notification failed", "session_id", sess.ID, "error", err)
		} else {
			outcome.Notified = true
			outcome.NotifyResult = booking.NotifiedMessage
		}
		e.metrics.ObserveNotification(outcome.Notified)
		message += "\n" + outcome.NotifyResult
	}

	sess.Booking = outcome
	sess.Stage = session.StageBookingCompleted
	t.booked = true
	t.outcome = outcomeCompleted

	if err := e.recorder.RecordBooking(sideCtx, archive.BookingRecord{
		ID:           uuid.NewString(),
		SessionID:    sess.ID,
		PatientName:  sess.PatientName,
		Provider:     provider.Name,
		Appointment:  slot.Timestamp,
		StartTime:    slot.StartTime,
		EndTime:      slot.EndTime,
		Succeeded:    outcome.Succeeded,
		StatusCode:   outcome.StatusCode,
		Message:      outcome.Message,
		Notified:     outcome.Notified,
		NotifyResult: outcome.NotifyResult,
		CreatedAt:    e.now().UTC(),
	}); err != nil {
		e.logger.Warn("failed to record booking", "session_id", sess.ID, "error", err)
	}

	return e.say(ctx, sess, message)
}

func (e *Engine) lookupProvider(name string) booking.Provider {
	for _, p := range e.providers {
		if p.Name == name {
			return p
		}
	}
	return booking.Provider{Name: name}
}

func (e *Engine) ask(ctx context.Context, sess *session.Session, kind oracle.PromptKind, q survey.Question) string {
	return e.renderer.Render(ctx, oracle.QuestionPrompt(kind, q, sess.Language))
}

func (e *Engine) say(ctx context.Context, sess *session.Session, text string) string {
	return e.renderer.Render(ctx, oracle.Statement(text, sess.Language))
}

func (e *Engine) forward(ctx context.Context, reply Reply) {
	if e.forwarder == nil {
		return
	}
	if err := e.forwarder.Forward(context.WithoutCancel(ctx), reply.SessionID, reply.Message); err != nil {
		e.logger.Warn("failed to forward reply", "session_id", reply.SessionID, "error", err)
	}
}

// Snapshot returns a copy of the stored session.
func (e *Engine) Snapshot(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("conversation: load session: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Reset forgets a session so the next turn starts over.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	unlock, err := e.locker.Lock(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()
	if err := e.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("conversation: delete session: %w", err)
	}
	return nil
}

type noopMetrics struct{}

func (noopMetrics) ObserveTurn(string, string) {}
func (noopMetrics) ObserveBooking(bool)        {}
func (noopMetrics) ObserveNotification(bool)   {}
