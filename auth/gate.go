package auth

import (
	"fmt"

	"replydesk/errors"
)

// Commands that may run without a session.
var publicCommands = map[string]struct{}{
	"login": {},
	"help":  {},
}

// Gate sits between the console and the controller and decides whether a
// command may run. When no operator password is configured the gate is
// open and every command passes unauthenticated.
type Gate struct {
	tokens  *TokenManager
	enabled bool
}

func NewGate(tokens *TokenManager, enabled bool) *Gate {
	return &Gate{tokens: tokens, enabled: enabled}
}

// Authorize validates the session token behind a command and returns the
// operator it belongs to. Public commands and the open gate return an
// empty operator, callers fall back to the configured default.
func (g *Gate) Authorize(command, token string) (string, error) {
	if !g.enabled || isPublicCommand(command) {
		return "", nil
	}

	if token == "" {
		return "", errors.ErrLoginRequired
	}

	claims, err := g.tokens.Validate(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrLoginRequired, err)
	}
	return claims.Operator, nil
}

func isPublicCommand(command string) bool {
	_, ok := publicCommands[command]
	return ok
}
