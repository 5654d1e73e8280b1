package connector

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"replydesk/domain"

	"github.com/tidwall/gjson"
)

const (
	linkedinBaseURL = "https://api.linkedin.com/v2"
	linkedinBudget  = 10
)

// Linkedin pulls unread conversation events from the messaging API.
type Linkedin struct {
	state
	rest    *restClient
	baseURL string
	token   string
}

func NewLinkedinConnector(log *slog.Logger, token string) *Linkedin {
	return &Linkedin{
		state:   newState(domain.SourceLinkedin, domain.ModeReal, linkedinBudget),
		rest:    newRestClient(log),
		baseURL: linkedinBaseURL,
		token:   token,
	}
}

func (l *Linkedin) headers() map[string]string {
	return map[string]string{
		"Authorization":             "Bearer " + l.token,
		"X-Restli-Protocol-Version": "2.0.0",
	}
}

func (l *Linkedin) Connect(ctx context.Context) error {
	if err := l.cachedFailure(); err != nil {
		return err
	}
	_, err := l.rest.get(ctx, l.baseURL+"/me", l.headers())
	return l.recordConnect(err)
}

func (l *Linkedin) FetchMessages(ctx context.Context) ([]domain.RawMessage, error) {
	if err := l.begin(); err != nil {
		return nil, err
	}

	data, err := l.rest.get(ctx, l.baseURL+"/conversations?q=unread", l.headers())
	if err != nil {
		l.finish(err)
		return nil, err
	}

	var messages []domain.RawMessage
	for _, element := range gjson.GetBytes(data, "elements").Array() {
		body := element.Get("message.text").String()
		if body == "" {
			continue
		}
		messages = append(messages, domain.RawMessage{
			Source:     domain.SourceLinkedin,
			Sender:     element.Get("from.name").String(),
			Content:    body,
			ReceivedAt: time.UnixMilli(element.Get("createdAt").Int()),
		})
	}
	return messages, nil
}

func (l *Linkedin) SendMessage(ctx context.Context, recipient, content string) error {
	if err := l.begin(); err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{
		"recipient": recipient,
		"message":   map[string]string{"text": content},
	})
	if err != nil {
		return err
	}
	_, err = l.rest.postJSON(ctx, l.baseURL+"/messages", l.headers(), body)
	l.finish(err)
	return err
}
