package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	ErrWorkerPanic         = fmt.Errorf("worker panic")
	ErrTransientProvider   = fmt.Errorf("transient provider failure")
	ErrAuthentication      = fmt.Errorf("authentication rejected")
	ErrRateLimited         = fmt.Errorf("rate limit exceeded")
	ErrUnknownSource       = fmt.Errorf("unknown source")
	ErrSourceDisconnected  = fmt.Errorf("source is not connected")
	ErrMissingCredentials  = fmt.Errorf("missing credentials")
	ErrMessageNotFound     = fmt.Errorf("message not found")
	ErrResponseNotFound    = fmt.Errorf("response not found")
	ErrNoPendingMessages   = fmt.Errorf("no pending messages")
	ErrInvalidPayload      = fmt.Errorf("invalid event payload")
	ErrEmptyKeywords       = fmt.Errorf("no keywords have been found")
	ErrGenerationFailed    = fmt.Errorf("generation failed")
	ErrBadCredentials      = fmt.Errorf("invalid operator credentials")
	ErrInvalidPassword     = fmt.Errorf("password does not meet complexity rules")
	ErrOperatorExists      = fmt.Errorf("operator already exists")
	ErrLoginRequired       = fmt.Errorf("login required")
	ErrSessionExpired      = fmt.Errorf("session expired")
	ErrAlreadySent         = fmt.Errorf("response already sent")
	ErrInvalidCommand      = fmt.Errorf("invalid command")
	ErrInvalidStatusChange = fmt.Errorf("invalid status transition")
)

// Is and As are re-exported so callers can keep a single errors import
// instead of aliasing this package against the standard library one.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }
