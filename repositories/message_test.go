package repositories

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"replydesk/domain"
	"replydesk/errors"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func setupStores(t *testing.T) (*badger.DB, *bluge.Writer) {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })

	return db, writer
}

func pendingMessage(content, sender string, receivedAt time.Time) domain.Message {
	return domain.Message{
		ID:         uuid.New(),
		Source:     domain.SourceTelegram,
		Sender:     sender,
		Content:    content,
		ReceivedAt: receivedAt,
		Status:     domain.StatusPending,
		Category:   domain.CategoryGeneral,
	}
}

func Test_Message_Lifecycle_RoundTrip(t *testing.T) {
	req := require.New(t)
	db, writer := setupStores(t)
	repository := NewMessageRepository(db, writer, slog.Default(), nil, 10)

	message := pendingMessage("are we still on for dinner?", "aunt.julia", time.Now().UTC())
	req.NoError(repository.Store(message))

	processing, err := repository.UpdateStatus(message.ID, domain.StatusProcessing)
	req.NoError(err)
	req.Equal(domain.StatusProcessing, processing.Status)

	answered, err := repository.UpdateStatus(message.ID, domain.StatusAnswered)
	req.NoError(err)
	req.Equal(domain.StatusAnswered, answered.Status)
	req.True(answered.Answered)

	// The id index follows the message across status prefixes
	fetched, err := repository.FetchByID(message.ID)
	req.NoError(err)
	req.Equal(domain.StatusAnswered, fetched.Status)
	req.True(fetched.Answered)

	pending, err := repository.ListByStatus(domain.StatusPending)
	req.NoError(err)
	req.Empty(pending)
}

func Test_Message_InvalidTransitions(t *testing.T) {
	req := require.New(t)
	db, writer := setupStores(t)
	repository := NewMessageRepository(db, writer, slog.Default(), nil, 10)

	message := pendingMessage("hello", "sam", time.Now().UTC())
	req.NoError(repository.Store(message))

	_, err := repository.UpdateStatus(message.ID, domain.StatusIgnored)
	req.NoError(err)

	// Ignored is terminal
	_, err = repository.UpdateStatus(message.ID, domain.StatusAnswered)
	req.ErrorIs(err, errors.ErrInvalidStatusChange)

	_, err = repository.UpdateStatus(uuid.New(), domain.StatusProcessing)
	req.ErrorIs(err, errors.ErrMessageNotFound)
}

func Test_ListByStatus_OrderedByArrival(t *testing.T) {
	req := require.New(t)
	db, writer := setupStores(t)
	repository := NewMessageRepository(db, writer, slog.Default(), nil, 10)

	at := time.Now().UTC()
	second := pendingMessage("second", "bob", at.Add(1*time.Minute))
	third := pendingMessage("third", "clara", at.Add(2*time.Minute))
	first := pendingMessage("first", "alice", at)

	// Stored out of order on purpose
	for _, message := range []domain.Message{second, third, first} {
		req.NoError(repository.Store(message))
	}

	listed, err := repository.ListByStatus(domain.StatusPending)
	req.NoError(err)
	req.Equal([]string{"first", "second", "third"}, lo.Map(listed, func(m domain.Message, _ int) string {
		return m.Content
	}))
}

func Test_ListByStatus_Limit(t *testing.T) {
	req := require.New(t)
	db, writer := setupStores(t)

	limit := 2
	repository := NewMessageRepository(db, writer, slog.Default(), &limit, 10)

	at := time.Now().UTC()
	for i := 0; i < 3; i++ {
		req.NoError(repository.Store(pendingMessage("msg", "sender", at.Add(time.Duration(i)*time.Second))))
	}

	listed, err := repository.ListByStatus(domain.StatusPending)
	req.NoError(err)
	req.Len(listed, limit)
}

func Test_NextPending(t *testing.T) {
	req := require.New(t)
	db, writer := setupStores(t)
	repository := NewMessageRepository(db, writer, slog.Default(), nil, 10)

	_, err := repository.NextPending()
	req.ErrorIs(err, errors.ErrNoPendingMessages)

	at := time.Now().UTC()
	oldest := pendingMessage("oldest", "alice", at)
	newest := pendingMessage("newest", "bob", at.Add(time.Minute))
	req.NoError(repository.Store(newest))
	req.NoError(repository.Store(oldest))

	next, err := repository.NextPending()
	req.NoError(err)
	req.Equal(oldest.ID, next.ID)

	_, err = repository.UpdateStatus(oldest.ID, domain.StatusProcessing)
	req.NoError(err)

	next, err = repository.NextPending()
	req.NoError(err)
	req.Equal(newest.ID, next.ID)
}

func Test_CountByStatus(t *testing.T) {
	req := require.New(t)
	db, writer := setupStores(t)
	repository := NewMessageRepository(db, writer, slog.Default(), nil, 10)

	at := time.Now().UTC()
	answered := pendingMessage("done", "alice", at)
	req.NoError(repository.Store(answered))
	req.NoError(repository.Store(pendingMessage("todo", "bob", at.Add(time.Second))))
	req.NoError(repository.Store(pendingMessage("todo too", "clara", at.Add(2*time.Second))))

	_, err := repository.UpdateStatus(answered.ID, domain.StatusAnswered)
	req.NoError(err)

	counts, err := repository.CountByStatus()
	req.NoError(err)
	req.Equal(2, counts[domain.StatusPending])
	req.Equal(1, counts[domain.StatusAnswered])
}

func Test_Search_OnlyFlushedMessagesMatch(t *testing.T) {
	req := require.New(t)
	db, writer := setupStores(t)
	repository := NewMessageRepository(db, writer, slog.Default(), nil, 10)

	message := pendingMessage("quick question about the invoice you sent", "mark", time.Now().UTC())
	message.Source = domain.SourceGmail
	req.NoError(repository.Store(message))

	// Not searchable before the batch is committed
	_, total, err := repository.Search(context.Background(), "invoice", "", 0)
	req.NoError(err)
	req.Zero(total)

	req.NoError(repository.Flush())
	time.Sleep(50 * time.Millisecond)

	results, total, err := repository.Search(context.Background(), "invoice", "", 0)
	req.NoError(err)
	req.Equal(uint64(1), total)
	req.Len(results, 1)
	req.Equal(message.ID, results[0].ID)

	// Source scope filters hits out
	_, total, err = repository.Search(context.Background(), "invoice", domain.SourceTelegram, 0)
	req.NoError(err)
	req.Zero(total)
}

func Test_ResetAll_WipesBothStores(t *testing.T) {
	req := require.New(t)
	db, writer := setupStores(t)
	repository := NewMessageRepository(db, writer, slog.Default(), nil, 10)

	message := pendingMessage("partnership proposal for next quarter", "recruiter.dana", time.Now().UTC())
	req.NoError(repository.Store(message))
	req.NoError(repository.Flush())
	time.Sleep(50 * time.Millisecond)

	req.NoError(repository.ResetAll())
	time.Sleep(50 * time.Millisecond)

	_, err := repository.FetchByID(message.ID)
	req.ErrorIs(err, errors.ErrMessageNotFound)

	counts, err := repository.CountByStatus()
	req.NoError(err)
	req.Empty(counts)

	_, total, err := repository.Search(context.Background(), "proposal", "", 0)
	req.NoError(err)
	req.Zero(total)
}

func Test_ConcurrentTransitions_StayConsistent(t *testing.T) {
	req := require.New(t)
	db, writer := setupStores(t)
	repository := NewMessageRepository(db, writer, slog.Default(), nil, 10)

	message := pendingMessage("contested record", "sender", time.Now().UTC())
	req.NoError(repository.Store(message))

	// The dispatcher and the controller may race on the same record.
	// Either writer may lose, but the record must stay whole.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = repository.UpdateStatus(message.ID, domain.StatusProcessing)
	}()
	go func() {
		defer wg.Done()
		_, _ = repository.UpdateStatus(message.ID, domain.StatusIgnored)
	}()
	wg.Wait()

	final, err := repository.FetchByID(message.ID)
	req.NoError(err)
	req.Contains([]domain.Status{domain.StatusProcessing, domain.StatusIgnored}, final.Status)
	req.Equal(message.Content, final.Content)

	// Exactly one copy of the record survives, whoever won
	counts, err := repository.CountByStatus()
	req.NoError(err)
	total := 0
	for _, n := range counts {
		total += n
	}
	req.Equal(1, total)
}
