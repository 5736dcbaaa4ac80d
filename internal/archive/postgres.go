package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PGStore writes records to the survey_responses and appointment_bookings
// tables created by migrations/.
type PGStore struct {
	db pgxQuerier
}

func NewPGStore(db pgxQuerier) *PGStore {
	if db == nil {
		panic("archive: pgx pool cannot be nil")
	}
	return &PGStore{db: db}
}

var _ Recorder = (*PGStore)(nil)

func (s *PGStore) RecordSurvey(ctx context.Context, rec SurveyRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = time.Now().UTC()
	}
	answers, err := json.Marshal(rec.Answers)
	if err != nil {
		return fmt.Errorf("archive: marshal answers: %w", err)
	}

	if _, err := s.db.Exec(ctx, `
		INSERT INTO survey_responses (id, session_id, language, answers, completed_at)
		VALUES ($1,$2,$3,$4,$5)
	`, rec.ID, rec.SessionID, rec.Language, answers, rec.CompletedAt); err != nil {
		return fmt.Errorf("archive: failed to persist survey: %w", err)
	}
	return nil
}

func (s *PGStore) RecordBooking(ctx context.Context, rec BookingRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if _, err := s.db.Exec(ctx, `
		INSERT INTO appointment_bookings (
			id, session_id, patient_name, provider, appointment, start_time, end_time,
			succeeded, status_code, message, notified, notify_result, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, rec.ID, rec.SessionID, rec.PatientName, rec.Provider, rec.Appointment, rec.StartTime, rec.EndTime,
		rec.Succeeded, rec.StatusCode, rec.Message, rec.Notified, rec.NotifyResult, rec.CreatedAt); err != nil {
		return fmt.Errorf("archive: failed to persist booking: %w", err)
	}
	return nil
}

// RecentBookings returns up to limit booking attempts, newest first.
func (s *PGStore) RecentBookings(ctx context.Context, limit int) ([]BookingRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, session_id, patient_name, provider, appointment, start_time, end_time,
		       succeeded, status_code, message, notified, notify_result, created_at
		FROM appointment_bookings
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("archive: query bookings: %w", err)
	}
	defer rows.Close()

	var out []BookingRecord
	for rows.Next() {
		var rec BookingRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.PatientName, &rec.Provider, &rec.Appointment,
			&rec.StartTime, &rec.EndTime, &rec.Succeeded, &rec.StatusCode, &rec.Message,
			&rec.Notified, &rec.NotifyResult, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("archive: scan booking: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: iterate bookings: %w", err)
	}
	return out, nil
}
