package archive

import "time"

// SurveyRecord is a completed survey. Answers are keyed by question id and
// hold canonical option strings.
type SurveyRecord struct {
	ID          string         `json:"id"`
	SessionID   string         `json:"session_id"`
	Language    string         `json:"language"`
	Answers     map[int]string `json:"answers"`
	CompletedAt time.Time      `json:"completed_at"`
}

// BookingRecord is one appointment attempt, successful or not.
type BookingRecord struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	PatientName  string    `json:"patient_name"`
	Provider     string    `json:"provider"`
	Appointment  string    `json:"appointment"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	Succeeded    bool      `json:"succeeded"`
	StatusCode   int       `json:"status_code"`
	Message      string    `json:"message"`
	Notified     bool      `json:"notified"`
	NotifyResult string    `json:"notify_result"`
	CreatedAt    time.Time `json:"created_at"`
}

// ManifestEntry is one JSONL line in the monthly manifest file.
type ManifestEntry struct {
	Kind       string `json:"kind"` // survey|booking
	SessionID  string `json:"session_id"`
	S3Key      string `json:"s3_key"`
	ArchivedAt string `json:"archived_at"`
	Succeeded  *bool  `json:"succeeded,omitempty"`
}
