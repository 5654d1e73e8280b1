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
	instagramBaseURL = "https://graph.instagram.com"
	instagramBudget  = 20
)

// Instagram reads direct messages for a professional account. The Graph
// shape is close to Facebook's but senders expose a username, not a name.
type Instagram struct {
	state
	rest    *restClient
	baseURL string
	token   string
}

func NewInstagramConnector(log *slog.Logger, token string) *Instagram {
	return &Instagram{
		state:   newState(domain.SourceInstagram, domain.ModeReal, instagramBudget),
		rest:    newRestClient(log),
		baseURL: instagramBaseURL,
		token:   token,
	}
}

func (i *Instagram) Connect(ctx context.Context) error {
	if err := i.cachedFailure(); err != nil {
		return err
	}
	probeURL := fmt.Sprintf("%s/me?fields=id,username&access_token=%s", i.baseURL, url.QueryEscape(i.token))
	_, err := i.rest.get(ctx, probeURL, nil)
	return i.recordConnect(err)
}

func (i *Instagram) FetchMessages(ctx context.Context) ([]domain.RawMessage, error) {
	if err := i.begin(); err != nil {
		return nil, err
	}

	fetchURL := fmt.Sprintf("%s/me/conversations?platform=instagram&fields=%s&access_token=%s",
		i.baseURL,
		url.QueryEscape("messages{from,message,created_time}"),
		url.QueryEscape(i.token))
	data, err := i.rest.get(ctx, fetchURL, nil)
	if err != nil {
		i.finish(err)
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
				Source:     domain.SourceInstagram,
				Sender:     msg.Get("from.username").String(),
				Content:    msg.Get("message").String(),
				ReceivedAt: receivedAt,
			})
		}
	}
	return messages, nil
}

func (i *Instagram) SendMessage(ctx context.Context, recipient, content string) error {
	if err := i.begin(); err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{
		"recipient": map[string]string{"id": recipient},
		"message":   map[string]string{"text": content},
	})
	if err != nil {
		return err
	}
	sendURL := fmt.Sprintf("%s/me/messages?access_token=%s", i.baseURL, url.QueryEscape(i.token))
	_, err = i.rest.postJSON(ctx, sendURL, nil, body)
	i.finish(err)
	return err
}
