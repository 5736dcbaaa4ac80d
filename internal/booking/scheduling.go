package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wolfman30/survey-assistant/pkg/logging"
)

const (
	defaultTimeout           = 15 * time.Second
	defaultAppointmentTypeID = 3720
	DefaultNote              = "Regular checkup"

	BookedMessage = "Appointment successfully booked! Please check your email for confirmation."
)

// Appointment is what the conversation hands to a Scheduler.
type Appointment struct {
	Provider    Provider
	PatientName string
	Slot        Slot
}

// Result describes a booking attempt. Message is shown to the patient as is.
type Result struct {
	Succeeded  bool
	StatusCode int
	Message    string
}

// Scheduler books appointments. Failures are reported in the Result, never
// as an error, because they are surfaced verbatim to the patient.
type Scheduler interface {
	Book(ctx context.Context, appt Appointment) Result
}

// SchedulingConfig configures the scheduling API client. ProviderIDs maps
// roster names to the service's provider ids; providers without an entry are
// sent by name.
type SchedulingConfig struct {
	URL               string
	Token             string
	OrganizationCode  string
	PatientID         string
	AppointmentTypeID int
	ProviderIDs       map[string]string
	Note              string
	Timeout           time.Duration
}

// SchedulingClient posts appointments to the provider scheduling API.
type SchedulingClient struct {
	httpClient *http.Client
	cfg        SchedulingConfig
	logger     *logging.Logger
}

func NewSchedulingClient(cfg SchedulingConfig, logger *logging.Logger) *SchedulingClient {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.AppointmentTypeID == 0 {
		cfg.AppointmentTypeID = defaultAppointmentTypeID
	}
	if strings.TrimSpace(cfg.Note) == "" {
		cfg.Note = DefaultNote
	}
	return &SchedulingClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}
}

type appointmentAttributes struct {
	EventTitle      string `json:"eventTitle"`
	Status          string `json:"status"`
	BookingCategory string `json:"bookingCategory"`
	OverrideSlots   bool   `json:"overrideSlots"`
}

type appointmentRequest struct {
	AppointmentTypeID int                   `json:"appointmentTypeId"`
	Date              string                `json:"date"`
	StartTime         string                `json:"startTime"`
	EndTime           string                `json:"endTime"`
	OverrideSlots     bool                  `json:"overrideSlots"`
	DurationInMinutes int                   `json:"durationInMinutes"`
	PatientID         string                `json:"patientId"`
	ProviderID        string                `json:"providerId"`
	ProviderName      string                `json:"providerName"`
	Note              string                `json:"note"`
	Attributes        appointmentAttributes `json:"attributes"`
}

func (c *SchedulingClient) payload(appt Appointment) appointmentRequest {
	duration := appt.Slot.Duration
	if duration <= 0 {
		duration = DefaultDuration
	}
	return appointmentRequest{
		AppointmentTypeID: c.cfg.AppointmentTypeID,
		Date:              appt.Slot.Timestamp,
		StartTime:         appt.Slot.StartTime,
		EndTime:           appt.Slot.EndTime,
		OverrideSlots:     true,
		DurationInMinutes: int(duration / time.Minute),
		PatientID:         c.cfg.PatientID,
		ProviderID:        c.providerID(appt.Provider),
		ProviderName:      appt.Provider.Name,
		Note:              c.cfg.Note,
		Attributes: appointmentAttributes{
			EventTitle:      fmt.Sprintf("Check-up Appointment for %s", appt.PatientName),
			Status:          "SCHEDULED",
			BookingCategory: "Event",
			OverrideSlots:   true,
		},
	}
}

func (c *SchedulingClient) providerID(p Provider) string {
	if id, ok := c.cfg.ProviderIDs[p.Name]; ok && id != "" {
		return id
	}
	return p.Name
}

func (c *SchedulingClient) Book(ctx context.Context, appt Appointment) Result {
	status, body, err := c.post(ctx, c.payload(appt))
	if err != nil {
		c.logger.Error("booking request failed", "provider", appt.Provider.Name, "error", err)
		return Result{Message: fmt.Sprintf("Error booking appointment: %v", err)}
	}

	if status < 200 || status > 299 {
		c.logger.Warn("booking API non-2xx response", "status", status, "body", truncate(body, 300))
		return Result{StatusCode: status, Message: fmt.Sprintf("Failed to book appointment. Status code: %d", status)}
	}
	if strings.Contains(strings.ToLower(body), "error") {
		c.logger.Warn("booking API reported an error", "status", status, "body", truncate(body, 300))
		return Result{StatusCode: status, Message: fmt.Sprintf("Error booking appointment: %s", truncate(body, 300))}
	}

	c.logger.Info("appointment booked", "provider", appt.Provider.Name, "date", appt.Slot.Date, "start", appt.Slot.StartTime)
	return Result{Succeeded: true, StatusCode: status, Message: BookedMessage}
}

func (c *SchedulingClient) post(ctx context.Context, payload appointmentRequest) (int, string, error) {
	if strings.TrimSpace(c.cfg.URL) == "" {
		return 0, "", errors.New("booking API url is not configured")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(data))
	if err != nil {
		return 0, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("organization_code", c.cfg.OrganizationCode)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, string(respBody), nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
