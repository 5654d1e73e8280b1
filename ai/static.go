package ai

import (
	"context"
	"log/slog"
	"strings"
)

// staticReplies are keyed by the category marker the prompt builder
// writes into the user prompt. Order matters, the first match wins.
var staticReplies = []struct {
	marker string
	text   string
}{
	{"category: support", "Thanks for flagging this. I'm looking into it and will follow up with a fix or a workaround as soon as I can."},
	{"category: business", "Thank you for your message. Let me check the details on my side and I'll get back to you with next steps shortly."},
	{"category: networking", "Great to hear from you! I'd be happy to connect, let me check my calendar and suggest a time."},
	{"category: sales", "Thanks for the offer. I'll take a look and reach out if it fits what I'm after."},
	{"category: personal", "So nice to hear from you! Things are busy over here, let's catch up properly soon."},
}

const staticDefaultReply = "Thanks for reaching out! I've seen your message and will get back to you shortly."

// StaticDrafter answers with canned text picked off the prompt. It backs
// the system when no generation credentials are configured.
type StaticDrafter struct {
	log *slog.Logger
}

func NewStaticDrafter(log *slog.Logger) *StaticDrafter {
	return &StaticDrafter{log: log}
}

func (s *StaticDrafter) Draft(_ context.Context, _, userPrompt string, _ int) string {
	lowered := strings.ToLower(userPrompt)
	for _, reply := range staticReplies {
		if strings.Contains(lowered, reply.marker) {
			return reply.text
		}
	}
	return staticDefaultReply
}

func (s *StaticDrafter) Revise(_ context.Context, original, _ string) string {
	s.log.Debug("static drafter cannot rework drafts, keeping original")
	return original
}
