package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"replydesk/domain"

	"github.com/tidwall/gjson"
)

const (
	telegramBaseURL = "https://api.telegram.org"
	telegramBudget  = 30
)

// Telegram talks to the Bot API. Updates are consumed with a moving
// offset so the same message is never fetched twice.
type Telegram struct {
	state
	rest    *restClient
	baseURL string
	token   string
	offset  atomic.Int64
}

func NewTelegramConnector(log *slog.Logger, token string) *Telegram {
	return &Telegram{
		state:   newState(domain.SourceTelegram, domain.ModeReal, telegramBudget),
		rest:    newRestClient(log),
		baseURL: telegramBaseURL,
		token:   token,
	}
}

func (t *Telegram) Connect(ctx context.Context) error {
	if err := t.cachedFailure(); err != nil {
		return err
	}
	_, err := t.rest.get(ctx, fmt.Sprintf("%s/bot%s/getMe", t.baseURL, t.token), nil)
	return t.recordConnect(err)
}

func (t *Telegram) FetchMessages(ctx context.Context) ([]domain.RawMessage, error) {
	if err := t.begin(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/bot%s/getUpdates?offset=%d&timeout=0", t.baseURL, t.token, t.offset.Load())
	data, err := t.rest.get(ctx, url, nil)
	if err != nil {
		t.finish(err)
		return nil, err
	}

	var messages []domain.RawMessage
	for _, update := range gjson.GetBytes(data, "result").Array() {
		if id := update.Get("update_id").Int(); id >= t.offset.Load() {
			t.offset.Store(id + 1)
		}

		msg := update.Get("message")
		if !msg.Exists() || msg.Get("text").String() == "" {
			continue
		}

		sender := msg.Get("from.username").String()
		if sender == "" {
			sender = msg.Get("from.first_name").String()
		}
		messages = append(messages, domain.RawMessage{
			Source:     domain.SourceTelegram,
			Sender:     sender,
			Content:    msg.Get("text").String(),
			ReceivedAt: time.Unix(msg.Get("date").Int(), 0),
		})
	}
	return messages, nil
}

func (t *Telegram) SendMessage(ctx context.Context, recipient, content string) error {
	if err := t.begin(); err != nil {
		return err
	}

	body, err := json.Marshal(map[string]string{"chat_id": recipient, "text": content})
	if err != nil {
		return err
	}
	_, err = t.rest.postJSON(ctx, fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token), nil, body)
	t.finish(err)
	return err
}
