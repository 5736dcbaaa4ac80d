// Package session holds per-conversant conversation state and the stores
// that persist it between turns.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/wolfman30/survey-assistant/internal/survey"
)

type Stage string

const (
	StageLanguageSelect    Stage = "language_select"
	StageAwaitingConsent   Stage = "awaiting_consent"
	StageInSurvey          Stage = "in_survey"
	StageBookingNotStarted Stage = "booking_not_started"
	StageSelectingProvider Stage = "selecting_provider"
	StageSelectingTime     Stage = "selecting_time"
	StageBookingCompleted  Stage = "booking_completed"
)

// BookingOutcome records what happened when the appointment was submitted.
type BookingOutcome struct {
	Provider     string `json:"provider"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Succeeded    bool   `json:"succeeded"`
	StatusCode   int    `json:"status_code,omitempty"`
	Message      string `json:"message"`
	Notified     bool   `json:"notified"`
	NotifyResult string `json:"notify_result,omitempty"`
}

// Session is one conversant's state. CurrentQuestionID is meaningful only
// while Stage is StageInSurvey.
type Session struct {
	ID                string          `json:"id"`
	Stage             Stage           `json:"stage"`
	CurrentQuestionID int             `json:"current_question_id"`
	Answers           map[int]string  `json:"answers"`
	Language          survey.Language `json:"language"`
	PatientName       string          `json:"patient_name,omitempty"`
	SelectedProvider  string          `json:"selected_provider,omitempty"`
	Booking           *BookingOutcome `json:"booking,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// New returns a session waiting for a language choice.
func New(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Stage:     StageLanguageSelect,
		Answers:   make(map[int]string),
		Language:  survey.English,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so callers can mutate without touching a stored value.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Answers = make(map[int]string, len(s.Answers))
	for k, v := range s.Answers {
		out.Answers[k] = v
	}
	if s.Booking != nil {
		b := *s.Booking
		out.Booking = &b
	}
	return &out
}

// Surveying reports whether the survey portion is still running.
func (s *Session) Surveying() bool {
	switch s.Stage {
	case StageLanguageSelect, StageAwaitingConsent, StageInSurvey:
		return true
	default:
		return false
	}
}

// Store persists sessions. Get returns (nil, nil) for an unknown id.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

var ErrSessionLocked = errors.New("session: turn already in progress")
