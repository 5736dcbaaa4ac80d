package booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/survey-assistant/internal/notify"
)

func TestNotificationAPIClient(t *testing.T) {
	var body map[string]map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-1", r.Header.Get("api_key"))
		assert.Equal(t, "org-1", r.Header.Get("organization_code"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(ts.Close)

	client := NewNotificationAPIClient(NotificationAPIConfig{
		URL:              ts.URL,
		APIKey:           "key-1",
		OrganizationCode: "org-1",
		Recipient:        "patient@example.com",
	}, nil)

	err := client.Notify(context.Background(), NotificationFor(testAppointment(t)))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"first_name":       "Alex",
		"doctor_name":      "Dr. Michael Chen",
		"appointment_date": "2026-10-19T09:15:00.000Z",
		"appointment_time": "09:15",
	}, body["data"])
	assert.Equal(t, map[string]string{
		"purpose": "EMAIL_APPOINTMENT_BOOKED_TEMPLATE",
		"to":      "patient@example.com",
		"subject": "Appointment Booked",
	}, body["emailData"])
}

func TestNotificationAPIClientFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)

	err := NewNotificationAPIClient(NotificationAPIConfig{URL: ts.URL}, nil).Notify(context.Background(), Notification{})
	require.Error(t, err)
	assert.Equal(t, "Failed to send email notification: notification API returned 500", FailedNotificationMessage(err))
}

type failingSender struct{}

func (failingSender) Send(context.Context, notify.EmailMessage) error { return errors.New("smtp down") }

func TestEmailNotifier(t *testing.T) {
	stub := notify.NewStubEmailSender(nil)
	notifier := NewEmailNotifier(stub, "patient@example.com", "")

	require.NoError(t, notifier.Notify(context.Background(), NotificationFor(testAppointment(t))))

	sent := stub.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "patient@example.com", sent[0].To)
	assert.Equal(t, "Appointment Booked", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "Dr. Michael Chen")
	assert.Contains(t, sent[0].Body, "2026-10-19 at 09:15")

	err := NewEmailNotifier(failingSender{}, "patient@example.com", "").Notify(context.Background(), Notification{})
	assert.EqualError(t, err, "smtp down")

	err = NewEmailNotifier(stub, "", "").Notify(context.Background(), Notification{})
	assert.Error(t, err)
}
