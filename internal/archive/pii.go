package archive

import "regexp"

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?1?[-.\s]?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`)
)

// ScrubPII replaces emails with [EMAIL] and phone numbers with [PHONE].
// Names are kept.
func ScrubPII(text string) string {
	text = emailRe.ReplaceAllString(text, "[EMAIL]")
	text = phoneRe.ReplaceAllString(text, "[PHONE]")
	return text
}

// ScrubAnswers returns a copy of answers with PII removed from free text.
func ScrubAnswers(answers map[int]string) map[int]string {
	out := make(map[int]string, len(answers))
	for id, a := range answers {
		out[id] = ScrubPII(a)
	}
	return out
}
