package ai

import (
	"fmt"
	"strings"

	"replydesk/domain"
)

// sourceGuidance tunes the draft tone to the platform it will land on.
var sourceGuidance = map[domain.Source]string{
	domain.SourceLinkedin:  "Keep it professional and polished.",
	domain.SourceGmail:     "Follow email etiquette with a greeting and a sign-off.",
	domain.SourceTelegram:  "Keep it casual and brief.",
	domain.SourceFacebook:  "Keep it warm and conversational.",
	domain.SourceInstagram: "Keep it light and friendly.",
	domain.SourceSlack:     "Be direct and to the point.",
}

// BuildSystemPrompt renders the operator's persona block for the model.
func BuildSystemPrompt(preference domain.OperatorPreference) string {
	var b strings.Builder

	b.WriteString("You draft replies to incoming messages on behalf of a busy professional. Write only the reply text, nothing else.\n")
	fmt.Fprintf(&b, "Writing style: %s.\n", preference.WritingStyle)
	if len(preference.Traits) > 0 {
		fmt.Fprintf(&b, "Personality: %s.\n", strings.Join(preference.Traits, ", "))
	}
	if len(preference.Interests) > 0 {
		fmt.Fprintf(&b, "Interests worth weaving in when relevant: %s.\n", strings.Join(preference.Interests, ", "))
	}
	if len(preference.Rules) > 0 {
		b.WriteString("Rules:\n")
		for _, rule := range preference.Rules {
			fmt.Fprintf(&b, "- %s\n", rule)
		}
	}
	return b.String()
}

// BuildUserPrompt renders one message with its routing facts so the
// model knows where the reply will be sent and in which register.
func BuildUserPrompt(message domain.Message) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Draft a reply to this %s message.\n", message.Source)
	fmt.Fprintf(&b, "category: %s\n", message.Category)
	if guidance, ok := sourceGuidance[message.Source]; ok {
		b.WriteString(guidance + "\n")
	}
	if message.Language != "" && message.Language != "en" {
		fmt.Fprintf(&b, "Reply in the sender's language (%s).\n", message.Language)
	}
	fmt.Fprintf(&b, "From: %s\nMessage:\n%s", message.Sender, message.Content)
	return b.String()
}
