package oracle

import (
	"fmt"

	"github.com/wolfman30/survey-assistant/internal/survey"
)

const validateSystemPrompt = `You check answers to a healthcare survey.
Decide whether the user's response is a valid answer to the question.
Options may be ranges such as "5 to 9"; a number inside a range is valid.
A first name alone is valid when exactly one doctor has that first name; when several share it, the surname must match too.
The user is writing in %s. A response that means one of the options in any language is valid.
Reply with only "true" or "false".`

const interpretSystemPrompt = `You map survey responses onto the survey's options.
Return the closest valid option exactly as written in the option list, or INVALID when nothing fits.
For numeric scales return just the number. For multiple-choice questions that allow several answers, return the matching options separated by commas.
The user is writing in %s; always answer with the English option.
Reply with only the option text.`

const offTopicSystemPrompt = `You watch a healthcare survey conversation.
Decide whether the user's message is an attempt to answer the current question.
Reply with only "true" if the message is off-topic, or "false" if it is an attempt to answer.`

const renderSystemPrompt = `You are a healthcare survey assistant.
Ask survey questions directly and keep the user focused on the survey.
Skip pleasantries and filler; go straight to the point in a concise, professional tone.
Respond only in %s.`

func questionPrompt(q survey.Question, response string) string {
	return fmt.Sprintf("Question: %s\nValid options: %s\nUser response: %s", q.Text, q.Options.Describe(), response)
}

func renderPrompt(p Prompt) string {
	switch p.Kind {
	case PromptReprompt:
		return fmt.Sprintf("The user gave an answer that does not fit. Briefly explain the valid options and ask again.\nQuestion: %s\nValid options: %s", p.Text, p.Options)
	case PromptOffTopic:
		return fmt.Sprintf("The user went off-topic. Acknowledge their comment in one short sentence and bring them back to the question.\nQuestion: %s\nOptions: %s", p.Text, p.Options)
	case PromptStatement:
		return fmt.Sprintf("Translate the following message into %s. Keep names, numbers, times and line breaks unchanged. Reply with the translation only.\n\n%s", p.Language.Name, p.Text)
	default:
		return fmt.Sprintf("Ask this survey question conversationally and list the options.\nQuestion: %s\nOptions: %s", p.Text, p.Options)
	}
}
