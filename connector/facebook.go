package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"replydesk/domain"

	"github.com/tidwall/gjson"
)

const (
	facebookBaseURL = "https://graph.facebook.com/v19.0"
	facebookBudget  = 20
)

// Facebook reads page conversations through the Graph API. The access
// token rides in the query string, as the Graph API expects.
type Facebook struct {
	state
	rest    *restClient
	baseURL string
	token   string
}

func NewFacebookConnector(log *slog.Logger, token string) *Facebook {
	return &Facebook{
		state:   newState(domain.SourceFacebook, domain.ModeReal, facebookBudget),
		rest:    newRestClient(log),
		baseURL: facebookBaseURL,
		token:   token,
	}
}

func (f *Facebook) Connect(ctx context.Context) error {
	if err := f.cachedFailure(); err != nil {
		return err
	}
	_, err := f.rest.get(ctx, fmt.Sprintf("%s/me?access_token=%s", f.baseURL, url.QueryEscape(f.token)), nil)
	return f.recordConnect(err)
}

func (f *Facebook) FetchMessages(ctx context.Context) ([]domain.RawMessage, error) {
	if err := f.begin(); err != nil {
		return nil, err
	}

	fetchURL := fmt.Sprintf("%s/me/conversations?fields=%s&access_token=%s",
		f.baseURL,
		url.QueryEscape("messages.limit(5){from,message,created_time}"),
		url.QueryEscape(f.token))
	data, err := f.rest.get(ctx, fetchURL, nil)
	if err != nil {
		f.finish(err)
		return nil, err
	}

	var messages []domain.RawMessage
	for _, conversation := range gjson.GetBytes(data, "data").Array() {
		for _, msg := range conversation.Get("messages.data").Array() {
			if msg.Get("message").String() == "" {
				continue
			}
			receivedAt := time.Now()
			if ts, err := time.Parse(time.RFC3339, msg.Get("created_time").String()); err == nil {
				receivedAt = ts
			}
			messages = append(messages, domain.RawMessage{
				Source:     domain.SourceFacebook,
				Sender:     msg.Get("from.name").String(),
				Content:    msg.Get("message").String(),
				ReceivedAt: receivedAt,
			})
		}
	}
	return messages, nil
}

func (f *Facebook) SendMessage(ctx context.Context, recipient, content string) error {
	if err := f.begin(); err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{
		"recipient": map[string]string{"id": recipient},
		"message":   map[string]string{"text": content},
	})
	if err != nil {
		return err
	}
	sendURL := fmt.Sprintf("%s/me/messages?access_token=%s", f.baseURL, url.QueryEscape(f.token))
	_, err = f.rest.postJSON(ctx, sendURL, nil, body)
	f.finish(err)
	return err
}
