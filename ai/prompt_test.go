package ai

import (
	"testing"

	"github.com/stretchr/testify/require"

	"replydesk/domain"
)

func TestBuildSystemPrompt(t *testing.T) {
	req := require.New(t)

	prompt := BuildSystemPrompt(domain.OperatorPreference{
		Operator:     "dana",
		WritingStyle: "short and warm",
		Traits:       []string{"curious", "direct"},
		Interests:    []string{"climbing"},
		Rules:        []string{"never share my phone number"},
	})

	req.Contains(prompt, "short and warm")
	req.Contains(prompt, "curious, direct")
	req.Contains(prompt, "climbing")
	req.Contains(prompt, "- never share my phone number")
}

func TestBuildUserPrompt(t *testing.T) {
	req := require.New(t)

	prompt := BuildUserPrompt(domain.Message{
		Source:   domain.SourceLinkedin,
		Sender:   "recruiter@talentlab.io",
		Content:  "Bonjour, avez-vous un moment cette semaine ?",
		Category: domain.CategoryBusiness,
		Language: "fr",
	})

	req.Contains(prompt, "linkedin message")
	req.Contains(prompt, "category: business")
	req.Contains(prompt, "professional and polished")
	req.Contains(prompt, "sender's language (fr)")
	req.Contains(prompt, "recruiter@talentlab.io")
	req.Contains(prompt, "Bonjour")
}

func TestBuildUserPrompt_EnglishNeedsNoLanguageHint(t *testing.T) {
	req := require.New(t)

	prompt := BuildUserPrompt(domain.Message{
		Source:   domain.SourceSlack,
		Sender:   "teammate",
		Content:  "can you review my PR?",
		Category: domain.CategoryBusiness,
		Language: "en",
	})

	req.NotContains(prompt, "sender's language")
}
