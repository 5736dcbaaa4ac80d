package bootstrap

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/wolfman30/survey-assistant/internal/booking"
	appconfig "github.com/wolfman30/survey-assistant/internal/config"
	"github.com/wolfman30/survey-assistant/internal/conversation"
	"github.com/wolfman30/survey-assistant/internal/notify"
	"github.com/wolfman30/survey-assistant/pkg/logging"
)

// BuildScheduler wires the scheduling API client.
func BuildScheduler(cfg *appconfig.Config, logger *logging.Logger) *booking.SchedulingClient {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.BookingAPIURL) == "" {
		logger.Warn("BOOKING_API_URL not set; appointment requests will fail")
	}
	return booking.NewSchedulingClient(booking.SchedulingConfig{
		URL:               cfg.BookingAPIURL,
		Token:             cfg.BookingAPIToken,
		OrganizationCode:  cfg.OrganizationCode,
		PatientID:         cfg.PatientID,
		AppointmentTypeID: cfg.AppointmentTypeID,
		ProviderIDs:       cfg.BookingProviderIDs,
		Note:              cfg.BookingNote,
		Timeout:           cfg.HTTPClientTimeout,
	}, logger)
}

// BuildNotifier picks how booking confirmations are delivered:
// NOTIFICATION_PROVIDER=api posts to the notification service, sendgrid and
// ses send the mail directly, stub only logs. Returns nil when nothing usable
// is configured.
func BuildNotifier(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) booking.Notifier {
	if logger == nil {
		logger = logging.Default()
	}
	subject := cfg.NotificationSubject

	switch cfg.NotificationProvider {
	case "api", "":
		if strings.TrimSpace(cfg.NotificationAPIURL) == "" {
			logger.Warn("NOTIFICATION_API_URL not set; booking notifications disabled")
			return nil
		}
		return booking.NewNotificationAPIClient(booking.NotificationAPIConfig{
			URL:              cfg.NotificationAPIURL,
			APIKey:           cfg.NotificationAPIKey,
			OrganizationCode: cfg.OrganizationCode,
			Recipient:        cfg.NotificationRecipient,
			Template:         cfg.NotificationTemplate,
			Subject:          subject,
			Timeout:          cfg.HTTPClientTimeout,
		}, logger)
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender == nil {
			logger.Warn("SENDGRID_API_KEY not set; booking notifications disabled")
			return nil
		}
		return booking.NewEmailNotifier(sender, cfg.NotificationRecipient, subject)
	case "ses":
		if awsCfg == nil {
			logger.Warn("aws config unavailable; booking notifications disabled")
			return nil
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		return booking.NewEmailNotifier(sender, cfg.NotificationRecipient, subject)
	case "stub":
		return booking.NewEmailNotifier(notify.NewStubEmailSender(logger), cfg.NotificationRecipient, subject)
	default:
		logger.Warn("unknown NOTIFICATION_PROVIDER; booking notifications disabled", "provider", cfg.NotificationProvider)
		return nil
	}
}

// BuildForwarder returns the reply webhook forwarder, or nil when
// REPLY_WEBHOOK_URL is unset.
func BuildForwarder(cfg *appconfig.Config, logger *logging.Logger) conversation.ReplyForwarder {
	if strings.TrimSpace(cfg.WebhookURL) == "" {
		return nil
	}
	return conversation.NewWebhookForwarder(conversation.WebhookConfig{
		URL:              cfg.WebhookURL,
		APIKey:           cfg.WebhookAPIKey,
		OrganizationCode: cfg.OrganizationCode,
		SenderID:         cfg.WebhookSenderID,
		ReceiverID:       cfg.WebhookReceiverID,
		Timeout:          cfg.HTTPClientTimeout,
	}, logger)
}
