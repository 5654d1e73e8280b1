package conversation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"replydesk/errors"
)

func TestParseCommand(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name     string
		input    string
		expected Command
		wantErr  bool
	}{
		{
			name:     "next",
			input:    "next",
			expected: Command{Kind: KindNext},
		},
		{
			name:     "surrounding whitespace is trimmed",
			input:    "  status  ",
			expected: Command{Kind: KindStatus},
		},
		{
			name:     "generate with id",
			input:    "generate:" + id.String(),
			expected: Command{Kind: KindGenerate, ID: id},
		},
		{
			name:     "send with spaced id",
			input:    "send: " + id.String(),
			expected: Command{Kind: KindSend, ID: id},
		},
		{
			name:    "generate with a broken id",
			input:   "generate:nope",
			wantErr: true,
		},
		{
			name:    "bare generate",
			input:   "generate",
			wantErr: true,
		},
		{
			name:     "search keeps the whole term list",
			input:    "search refund status",
			expected: Command{Kind: KindSearch, Args: "refund status"},
		},
		{
			name:     "style keeps the whole text",
			input:    "style short and warm",
			expected: Command{Kind: KindStyle, Args: "short and warm"},
		},
		{
			name:     "login with name and password",
			input:    "login dana S3cret-enough!",
			expected: Command{Kind: KindLogin, Args: "dana S3cret-enough!"},
		},
		{
			name:     "register with name and password",
			input:    "register sam S3cret-enough!",
			expected: Command{Kind: KindRegister, Args: "sam S3cret-enough!"},
		},
		{
			name:    "bare login",
			input:   "login",
			wantErr: true,
		},
		{
			name:     "reset all",
			input:    "reset:all",
			expected: Command{Kind: KindReset},
		},
		{
			name:     "anything else is free text",
			input:    "thanks, talk soon!",
			expected: Command{Kind: KindFreeText, Text: "thanks, talk soon!"},
		},
		{
			name:    "empty input",
			input:   "   ",
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := require.New(t)

			command, err := ParseCommand(test.input)
			if test.wantErr {
				req.ErrorIs(err, errors.ErrInvalidCommand)
				return
			}
			req.NoError(err)
			req.Equal(test.expected, command)
		})
	}
}
