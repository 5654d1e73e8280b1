package domain

import "time"

// OperatorPreference shapes the tone of generated drafts for one operator.
type OperatorPreference struct {
	Operator     string    `json:"operator"`
	WritingStyle string    `json:"writing_style"`
	Traits       []string  `json:"traits"`
	Interests    []string  `json:"interests"`
	Rules        []string  `json:"rules"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefaultPreference seeds a usable profile the first time an operator
// is seen, before any explicit configuration.
func DefaultPreference(operator string) OperatorPreference {
	return OperatorPreference{
		Operator:     operator,
		WritingStyle: "concise and friendly",
		Traits:       []string{"professional", "helpful"},
		Interests:    []string{"technology", "software engineering"},
		Rules: []string{
			"always thank the sender",
			"never commit to a meeting without checking the calendar first",
		},
		UpdatedAt: time.Now().UTC(),
	}
}
