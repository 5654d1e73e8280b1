package connector

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"replydesk/domain"
	"replydesk/errors"

	"github.com/slack-go/slack"
)

const (
	slackBudget    = 50
	slackFetchSize = 20
)

// slackAPI is the slice of the Slack SDK this connector depends on.
type slackAPI interface {
	AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error)
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Slack watches one channel through the official SDK. History is read
// incrementally using the newest seen timestamp as the next lower bound.
type Slack struct {
	state
	log     *slog.Logger
	api     slackAPI
	channel string
	backoff func(attempt int) time.Duration

	histMu   sync.Mutex
	lastSeen string
}

func NewSlackConnector(log *slog.Logger, token, channel string) *Slack {
	api := slack.New(token, slack.OptionHTTPClient(&http.Client{Timeout: requestTimeout}))
	return &Slack{
		state:   newState(domain.SourceSlack, domain.ModeReal, slackBudget),
		log:     log,
		api:     api,
		channel: channel,
		backoff: exponentialBackoff,
	}
}

func (s *Slack) Connect(ctx context.Context) error {
	if err := s.cachedFailure(); err != nil {
		return err
	}
	err := withRetry(ctx, s.backoff, func() error {
		_, err := s.api.AuthTestContext(ctx)
		return mapSlackError(err)
	})
	return s.recordConnect(err)
}

func (s *Slack) FetchMessages(ctx context.Context) ([]domain.RawMessage, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}

	s.histMu.Lock()
	oldest := s.lastSeen
	s.histMu.Unlock()

	var history *slack.GetConversationHistoryResponse
	err := withRetry(ctx, s.backoff, func() error {
		var err error
		history, err = s.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
			ChannelID: s.channel,
			Limit:     slackFetchSize,
			Oldest:    oldest,
		})
		return mapSlackError(err)
	})
	if err != nil {
		s.finish(err)
		return nil, err
	}

	var messages []domain.RawMessage
	newest := oldest
	for _, msg := range history.Messages {
		if slackTimestampAfter(msg.Timestamp, newest) {
			newest = msg.Timestamp
		}
		// The bot's own posts come back in history too.
		if msg.BotID != "" || msg.Text == "" {
			continue
		}
		sender := msg.Username
		if sender == "" {
			sender = msg.User
		}
		messages = append(messages, domain.RawMessage{
			Source:     domain.SourceSlack,
			Sender:     sender,
			Content:    msg.Text,
			ReceivedAt: slackTimestamp(msg.Timestamp),
		})
	}

	s.histMu.Lock()
	s.lastSeen = newest
	s.histMu.Unlock()
	return messages, nil
}

func (s *Slack) SendMessage(ctx context.Context, recipient, content string) error {
	if err := s.begin(); err != nil {
		return err
	}

	channel := recipient
	if channel == "" {
		channel = s.channel
	}
	err := withRetry(ctx, s.backoff, func() error {
		_, _, err := s.api.PostMessageContext(ctx, channel, slack.MsgOptionText(content, false))
		return mapSlackError(err)
	})
	s.finish(err)
	return err
}

// mapSlackError folds SDK failures into the shared taxonomy so the retry
// policy treats Slack exactly like the REST variants.
func mapSlackError(err error) error {
	if err == nil {
		return nil
	}

	var limited *slack.RateLimitedError
	if errors.As(err, &limited) {
		return fmt.Errorf("%w: %v", errors.ErrTransientProvider, err)
	}

	var status slack.StatusCodeError
	if errors.As(err, &status) {
		if mapped := classifyStatus(status.Code); mapped != nil {
			return mapped
		}
	}

	switch err.Error() {
	case "invalid_auth", "not_authed", "account_inactive", "token_revoked":
		return fmt.Errorf("%w: %v", errors.ErrAuthentication, err)
	}
	return fmt.Errorf("%w: %v", errors.ErrTransientProvider, err)
}

// slackTimestamp converts the API's "seconds.sequence" format.
func slackTimestamp(ts string) time.Time {
	seconds, _, _ := strings.Cut(ts, ".")
	if sec, err := strconv.ParseInt(seconds, 10, 64); err == nil {
		return time.Unix(sec, 0)
	}
	return time.Now()
}

func slackTimestampAfter(ts, reference string) bool {
	if reference == "" {
		return true
	}
	a, errA := strconv.ParseFloat(ts, 64)
	b, errB := strconv.ParseFloat(reference, 64)
	if errA != nil || errB != nil {
		return ts > reference
	}
	return a > b
}
