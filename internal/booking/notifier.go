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

	"github.com/wolfman30/survey-assistant/internal/notify"
	"github.com/wolfman30/survey-assistant/pkg/logging"
)

const (
	NotifiedMessage = "Email notification sent successfully!"

	defaultTemplate = "EMAIL_APPOINTMENT_BOOKED_TEMPLATE"
	defaultSubject  = "Appointment Booked"
)

// Notification carries the fields of the appointment confirmation.
// AppointmentDate is the full timestamp sent to the scheduler and
// AppointmentTime the HH:MM the patient typed.
type Notification struct {
	PatientName     string
	DoctorName      string
	AppointmentDate string
	AppointmentTime string
}

// NotificationFor builds the confirmation for a booked appointment.
func NotificationFor(appt Appointment) Notification {
	return Notification{
		PatientName:     appt.PatientName,
		DoctorName:      appt.Provider.Name,
		AppointmentDate: appt.Slot.Timestamp,
		AppointmentTime: appt.Slot.Clock,
	}
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// FailedNotificationMessage is appended to the booking confirmation when
// Notify fails.
func FailedNotificationMessage(err error) string {
	return fmt.Sprintf("Failed to send email notification: %v", err)
}

type NotificationAPIConfig struct {
	URL              string
	APIKey           string
	OrganizationCode string
	Recipient        string
	Template         string
	Subject          string
	Timeout          time.Duration
}

// NotificationAPIClient asks the notification service to render and send
// its templated confirmation mail.
type NotificationAPIClient struct {
	httpClient *http.Client
	cfg        NotificationAPIConfig
	logger     *logging.Logger
}

func NewNotificationAPIClient(cfg NotificationAPIConfig, logger *logging.Logger) *NotificationAPIClient {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Template == "" {
		cfg.Template = defaultTemplate
	}
	if cfg.Subject == "" {
		cfg.Subject = defaultSubject
	}
	return &NotificationAPIClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}
}

type notificationData struct {
	FirstName       string `json:"first_name"`
	DoctorName      string `json:"doctor_name"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
}

type emailData struct {
	Purpose string `json:"purpose"`
	To      string `json:"to"`
	Subject string `json:"subject"`
}

type notificationRequest struct {
	Data      notificationData `json:"data"`
	EmailData emailData        `json:"emailData"`
}

func (c *NotificationAPIClient) Notify(ctx context.Context, n Notification) error {
	if strings.TrimSpace(c.cfg.URL) == "" {
		return errors.New("notification API url is not configured")
	}
	payload, err := json.Marshal(notificationRequest{
		Data: notificationData{
			FirstName:       n.PatientName,
			DoctorName:      n.DoctorName,
			AppointmentDate: n.AppointmentDate,
			AppointmentTime: n.AppointmentTime,
		},
		EmailData: emailData{
			Purpose: c.cfg.Template,
			To:      c.cfg.Recipient,
			Subject: c.cfg.Subject,
		},
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api_key", c.cfg.APIKey)
	req.Header.Set("organization_code", c.cfg.OrganizationCode)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		c.logger.Warn("notification API non-2xx response", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("notification API returned %d", resp.StatusCode)
	}
	c.logger.Info("appointment notification sent", "doctor", n.DoctorName, "date", n.AppointmentDate)
	return nil
}

// EmailNotifier renders the confirmation itself and sends it through an
// EmailSender.
type EmailNotifier struct {
	sender    notify.EmailSender
	recipient string
	subject   string
}

func NewEmailNotifier(sender notify.EmailSender, recipient, subject string) *EmailNotifier {
	if sender == nil {
		panic("booking: email sender cannot be nil")
	}
	if subject == "" {
		subject = defaultSubject
	}
	return &EmailNotifier{sender: sender, recipient: recipient, subject: subject}
}

func (e *EmailNotifier) Notify(ctx context.Context, n Notification) error {
	if strings.TrimSpace(e.recipient) == "" {
		return errors.New("notification recipient is not configured")
	}
	date := n.AppointmentDate
	if len(date) >= len("2006-01-02") {
		date = date[:len("2006-01-02")]
	}
	body := fmt.Sprintf("Hi %s,\n\nYour appointment with %s is booked for %s at %s.\n\nSee you then.",
		n.PatientName, n.DoctorName, date, n.AppointmentTime)

	return e.sender.Send(ctx, notify.EmailMessage{
		To:      e.recipient,
		ToName:  n.PatientName,
		Subject: e.subject,
		Body:    body,
	})
}
