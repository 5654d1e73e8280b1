package repositories

import (
	"log/slog"
	"testing"
	"time"

	"replydesk/domain"
	"replydesk/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openBadger(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func draftResponse(messageID uuid.UUID, content string, createdAt time.Time) domain.Response {
	return domain.Response{
		ID:        uuid.New(),
		MessageID: messageID,
		Content:   content,
		Kind:      domain.ResponseGenerated,
		CreatedAt: createdAt,
	}
}

func Test_Response_StoreAndListByMessage(t *testing.T) {
	req := require.New(t)
	repository := NewResponseRepository(openBadger(t), slog.Default())

	messageID := uuid.New()
	at := time.Now().UTC()
	first := draftResponse(messageID, "thanks, I'll get back to you", at)
	second := draftResponse(messageID, "confirmed for Tuesday", at.Add(time.Minute))
	other := draftResponse(uuid.New(), "unrelated", at)

	for _, response := range []domain.Response{second, other, first} {
		req.NoError(repository.Store(response))
	}

	listed, err := repository.ListByMessage(messageID)
	req.NoError(err)
	req.Equal([]uuid.UUID{first.ID, second.ID}, lo.Map(listed, func(r domain.Response, _ int) uuid.UUID {
		return r.ID
	}))
}

func Test_Response_UpdateContentKeepsKind(t *testing.T) {
	req := require.New(t)
	repository := NewResponseRepository(openBadger(t), slog.Default())

	response := draftResponse(uuid.New(), "initial draft", time.Now().UTC())
	req.NoError(repository.Store(response))

	updated, err := repository.UpdateContent(response.ID, "reworked draft")
	req.NoError(err)
	req.Equal("reworked draft", updated.Content)
	req.Equal(domain.ResponseGenerated, updated.Kind)
	req.False(updated.IsSent)

	fetched, err := repository.FetchByID(response.ID)
	req.NoError(err)
	req.Equal("reworked draft", fetched.Content)
}

func Test_Response_MarkSentExactlyOnce(t *testing.T) {
	req := require.New(t)
	repository := NewResponseRepository(openBadger(t), slog.Default())

	response := draftResponse(uuid.New(), "see you there", time.Now().UTC())
	req.NoError(repository.Store(response))

	sentAt := time.Now().UTC()
	sent, err := repository.MarkSent(response.ID, sentAt)
	req.NoError(err)
	req.True(sent.IsSent)
	req.NotNil(sent.SentAt)
	req.Equal(sentAt, *sent.SentAt)

	_, err = repository.MarkSent(response.ID, time.Now().UTC())
	req.ErrorIs(err, errors.ErrAlreadySent)
}

func Test_Response_UnknownID(t *testing.T) {
	req := require.New(t)
	repository := NewResponseRepository(openBadger(t), slog.Default())

	_, err := repository.FetchByID(uuid.New())
	req.ErrorIs(err, errors.ErrResponseNotFound)

	_, err = repository.UpdateContent(uuid.New(), "nope")
	req.ErrorIs(err, errors.ErrResponseNotFound)
}
