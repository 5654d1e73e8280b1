package connector

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"replydesk/domain"

	"github.com/tidwall/gjson"
)

const (
	gmailBaseURL   = "https://gmail.googleapis.com/gmail/v1"
	gmailBudget    = 15
	gmailFetchSize = 10
)

// Gmail reads unread mail through the REST API. Listing only returns ids,
// so each fetch resolves the metadata of every listed message.
type Gmail struct {
	state
	rest    *restClient
	baseURL string
	token   string
}

func NewGmailConnector(log *slog.Logger, token string) *Gmail {
	return &Gmail{
		state:   newState(domain.SourceGmail, domain.ModeReal, gmailBudget),
		rest:    newRestClient(log),
		baseURL: gmailBaseURL,
		token:   token,
	}
}

func (g *Gmail) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + g.token}
}

func (g *Gmail) Connect(ctx context.Context) error {
	if err := g.cachedFailure(); err != nil {
		return err
	}
	_, err := g.rest.get(ctx, g.baseURL+"/users/me/profile", g.headers())
	return g.recordConnect(err)
}

func (g *Gmail) FetchMessages(ctx context.Context) ([]domain.RawMessage, error) {
	if err := g.begin(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/users/me/messages?q=is%%3Aunread&maxResults=%d", g.baseURL, gmailFetchSize)
	data, err := g.rest.get(ctx, url, g.headers())
	if err != nil {
		g.finish(err)
		return nil, err
	}

	var messages []domain.RawMessage
	for _, item := range gjson.GetBytes(data, "messages").Array() {
		raw, err := g.resolve(ctx, item.Get("id").String())
		if err != nil {
			g.finish(err)
			return nil, err
		}
		messages = append(messages, raw)
	}
	return messages, nil
}

func (g *Gmail) resolve(ctx context.Context, id string) (domain.RawMessage, error) {
	url := fmt.Sprintf("%s/users/me/messages/%s?format=metadata&metadataHeaders=From&metadataHeaders=Subject", g.baseURL, id)
	data, err := g.rest.get(ctx, url, g.headers())
	if err != nil {
		return domain.RawMessage{}, err
	}

	content := gjson.GetBytes(data, "snippet").String()
	if subject := gjson.GetBytes(data, `payload.headers.#(name=="Subject").value`).String(); subject != "" {
		content = subject + "\n" + content
	}

	receivedAt := time.Now()
	if ms, err := strconv.ParseInt(gjson.GetBytes(data, "internalDate").String(), 10, 64); err == nil {
		receivedAt = time.UnixMilli(ms)
	}

	return domain.RawMessage{
		Source:     domain.SourceGmail,
		Sender:     gjson.GetBytes(data, `payload.headers.#(name=="From").value`).String(),
		Content:    content,
		ReceivedAt: receivedAt,
	}, nil
}

func (g *Gmail) SendMessage(ctx context.Context, recipient, content string) error {
	if err := g.begin(); err != nil {
		return err
	}

	rfc822 := fmt.Sprintf("To: %s\r\nSubject: Re: your message\r\n\r\n%s", recipient, content)
	body, err := json.Marshal(map[string]string{
		"raw": base64.URLEncoding.EncodeToString([]byte(rfc822)),
	})
	if err != nil {
		return err
	}
	_, err = g.rest.postJSON(ctx, g.baseURL+"/users/me/messages/send", g.headers(), body)
	g.finish(err)
	return err
}
