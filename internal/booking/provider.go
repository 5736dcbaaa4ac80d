// Package booking covers everything after the survey: choosing a provider,
// choosing a time, submitting the appointment and notifying the patient.
package booking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/wolfman30/survey-assistant/internal/survey"
)

type Provider struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

// DefaultProviders is the bookable roster, in display order.
var DefaultProviders = []Provider{
	{Name: "Dr. Sarah Johnson", Specialty: "Primary Care"},
	{Name: "Dr. Michael Chen", Specialty: "Internal Medicine"},
	{Name: "Dr. Emily Williams", Specialty: "Family Medicine"},
	{Name: "Dr. James Rodriguez", Specialty: "General Practice"},
	{Name: "Dr. Lisa Anderson", Specialty: "Internal Medicine"},
}

// ProviderList renders the numbered roster, one provider per line.
func ProviderList(providers []Provider) string {
	lines := make([]string, 0, len(providers))
	for i, p := range providers {
		lines = append(lines, fmt.Sprintf("%d. %s - %s", i+1, p.Name, p.Specialty))
	}
	return strings.Join(lines, "\n")
}

// ProviderQuestion frames provider selection as a question so it can go
// through the same oracle checks as survey answers.
func ProviderQuestion(providers []Provider) survey.Question {
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name)
	}
	return survey.Question{
		Text:    "Which provider would you like to book with?",
		Options: survey.Enumerated(names...),
	}
}

var numberToken = regexp.MustCompile(`\d+`)

// MatchProvider returns the first provider, in roster order, whose full name
// or 1-based position appears in text. Positions must appear as a whole
// number so "12" never selects provider 1.
func MatchProvider(providers []Provider, text string) (Provider, bool) {
	lower := strings.ToLower(text)
	numbers := make(map[int]struct{})
	for _, tok := range numberToken.FindAllString(text, -1) {
		if n, err := strconv.Atoi(tok); err == nil {
			numbers[n] = struct{}{}
		}
	}

	for i, p := range providers {
		if strings.Contains(lower, strings.ToLower(p.Name)) {
			return p, true
		}
		if _, ok := numbers[i+1]; ok {
			return p, true
		}
	}
	return Provider{}, false
}
