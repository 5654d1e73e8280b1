//go:generate go run go.uber.org/mock/mockgen -source=drafter.go -destination=../mocks/mock_drafter.go -package=mocks
// Package ai drafts replies on behalf of the operator. Generation is
// best-effort everywhere: whatever goes wrong inside, callers always get
// usable text back, never an error.
package ai

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Apology is the fixed text surfaced when a draft cannot be produced.
const Apology = "I apologize, but I'm having trouble generating a response right now. Please try again or respond manually."

const generationTimeout = 10 * time.Second

// Drafter produces and reworks reply drafts. Implementations swallow
// their own failures: Draft degrades to Apology, Revise returns the
// original text unmodified.
type Drafter interface {
	Draft(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) string
	Revise(ctx context.Context, original, feedback string) string
}

// NewDrafter picks the LLM-backed drafter when credentials are present
// and the static one otherwise, mirroring the connector factory policy.
func NewDrafter(log *slog.Logger, apiKey, model string) Drafter {
	if apiKey == "" {
		log.Warn("no generation credentials, drafts will be static")
		return NewStaticDrafter(log)
	}

	llm, err := openai.New(openai.WithToken(apiKey), openai.WithModel(model))
	if err != nil {
		log.Warn("generation model unavailable, drafts will be static", "error", err)
		return NewStaticDrafter(log)
	}
	return NewLLMDrafter(llm, log)
}

// LLMDrafter generates drafts through a chat model.
type LLMDrafter struct {
	llm     llms.Model
	log     *slog.Logger
	timeout time.Duration
}

func NewLLMDrafter(llm llms.Model, log *slog.Logger) *LLMDrafter {
	return &LLMDrafter{llm: llm, log: log, timeout: generationTimeout}
}

func (d *LLMDrafter) Draft(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) string {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	resp, err := d.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
			llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
		},
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(0.7),
	)
	if err != nil || len(resp.Choices) == 0 {
		d.log.Warn("draft generation failed", "error", err)
		return Apology
	}
	return strings.TrimSpace(resp.Choices[0].Content)
}

func (d *LLMDrafter) Revise(ctx context.Context, original, feedback string) string {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	system := "You rework reply drafts. Apply the feedback to the draft and return only the reworked text, nothing else."
	user := "Draft:\n" + original + "\n\nFeedback: " + feedback

	resp, err := d.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, system),
			llms.TextParts(llms.ChatMessageTypeHuman, user),
		},
		llms.WithTemperature(0.5),
	)
	if err != nil || len(resp.Choices) == 0 {
		d.log.Warn("revision failed, keeping original", "error", err)
		return original
	}
	return strings.TrimSpace(resp.Choices[0].Content)
}
