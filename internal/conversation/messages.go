package conversation

import (
	"fmt"

	"github.com/wolfman30/survey-assistant/internal/booking"
)

const (
	consentText = "Hi there! At Health New England, your feedback is important to us. " +
		"Would you be willing to take a brief survey about your recent healthcare experiences? " +
		"Your input helps us improve the care and services we offer."
	consentOptions = "Yes, No"
	consentRetry   = "Would you like to take our healthcare survey? (yes/no)"

	namePrompt        = "Thank you for completing the survey! First, could you please tell me your name?"
	surveyDonePrefix  = "Survey completed successfully! Let's book your appointment.\n\n"
	providerRetryText = "I couldn't understand your selection. "
	timePrompt        = "What time would you like to schedule your appointment for tomorrow? Please use 24-hour format (HH:MM), e.g., 14:30 for 2:30 PM:"
	timeRetryPrompt   = "Please enter a valid time in 24-hour format (HH:MM), e.g., 14:30 for 2:30 PM:"
	nameRetryPrompt   = "Please tell me your name so I can book the appointment."
	alreadyBooked     = "Your appointment has already been booked. Thank you for taking our survey!"
)

func providerPrompt(providers []booking.Provider) string {
	return fmt.Sprintf("Here are our available providers:\n\n%s\n\nPlease enter the number of the provider you'd like to schedule with (1-%d):",
		booking.ProviderList(providers), len(providers))
}

func fixedNameProviderPrompt(providers []booking.Provider) string {
	return fmt.Sprintf("%sAvailable providers:\n%s\nPlease select (1-%d):",
		surveyDonePrefix, booking.ProviderList(providers), len(providers))
}
