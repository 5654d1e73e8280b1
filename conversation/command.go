// Package conversation is the operator's control surface: a command
// parser, a per-operator session store and the controller tying both to
// the queue, the drafter and the connector fleet.
package conversation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"replydesk/errors"
)

// Kind names one operator action.
type Kind string

const (
	KindNext     Kind = "next"
	KindGenerate Kind = "generate"
	KindIgnore   Kind = "ignore"
	KindManual   Kind = "manual"
	KindEdit     Kind = "edit"
	KindSend     Kind = "send"
	KindStatus   Kind = "status"
	KindSearch   Kind = "search"
	KindPrefs    Kind = "prefs"
	KindStyle    Kind = "style"
	KindReset    Kind = "reset"
	KindRegister Kind = "register"
	KindLogin    Kind = "login"
	KindHelp     Kind = "help"
	KindFreeText Kind = "free_text"
)

// idCommands take a record identifier after the colon.
var idCommands = map[string]Kind{
	"generate": KindGenerate,
	"ignore":   KindIgnore,
	"manual":   KindManual,
	"edit":     KindEdit,
	"send":     KindSend,
}

// wordCommands take the rest of the line as a single argument.
var wordCommands = map[string]Kind{
	"search":   KindSearch,
	"style":    KindStyle,
	"register": KindRegister,
	"login":    KindLogin,
}

// Command is one parsed operator input. ID is set for the colon forms,
// Args for the word forms, Text for free text.
type Command struct {
	Kind Kind
	ID   uuid.UUID
	Args string
	Text string
}

// ParseCommand maps a console line onto the command vocabulary. Anything
// that is not a recognized verb is free text, the reply to an
// outstanding manual or edit request.
func ParseCommand(input string) (Command, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Command{}, fmt.Errorf("%w: empty input", errors.ErrInvalidCommand)
	}

	switch input {
	case "next":
		return Command{Kind: KindNext}, nil
	case "status":
		return Command{Kind: KindStatus}, nil
	case "prefs":
		return Command{Kind: KindPrefs}, nil
	case "help":
		return Command{Kind: KindHelp}, nil
	case "reset:all":
		return Command{Kind: KindReset}, nil
	}

	if verb, rest, found := strings.Cut(input, ":"); found {
		if kind, ok := idCommands[verb]; ok {
			id, err := uuid.Parse(strings.TrimSpace(rest))
			if err != nil {
				return Command{}, fmt.Errorf("%w: %s needs a record id, got %q", errors.ErrInvalidCommand, verb, rest)
			}
			return Command{Kind: kind, ID: id}, nil
		}
	}

	if verb, rest, found := strings.Cut(input, " "); found {
		if kind, ok := wordCommands[verb]; ok {
			args := strings.TrimSpace(rest)
			if args == "" {
				return Command{}, fmt.Errorf("%w: %s needs an argument", errors.ErrInvalidCommand, verb)
			}
			return Command{Kind: kind, Args: args}, nil
		}
	}

	// A bare verb typed without its argument reads as a mistake, not as
	// free text.
	if _, ok := idCommands[input]; ok {
		return Command{}, fmt.Errorf("%w: %s needs a record id", errors.ErrInvalidCommand, input)
	}
	if _, ok := wordCommands[input]; ok {
		return Command{}, fmt.Errorf("%w: %s needs an argument", errors.ErrInvalidCommand, input)
	}

	return Command{Kind: KindFreeText, Text: input}, nil
}
