//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"replydesk/domain"
	"replydesk/errors"

	"github.com/blugelabs/bluge"
	"github.com/blugelabs/bluge/index"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	Store(message domain.Message) error
	Flush() error
	FetchByID(id uuid.UUID) (domain.Message, error)
	ListByStatus(status domain.Status) ([]domain.Message, error)
	NextPending() (domain.Message, error)
	UpdateStatus(id uuid.UUID, to domain.Status) (domain.Message, error)
	CountByStatus() (map[domain.Status]int, error)
	Search(ctx context.Context, terms string, source domain.Source, offset int) ([]domain.Message, uint64, error)
	ResetAll() error
}

// MessageRepository writes every message twice: to BadgerDB as the source
// of truth and to a Bluge batch for full-text search. The batch only
// becomes searchable after Flush.
type MessageRepository struct {
	db       *badger.DB
	search   *bluge.Writer
	log      *slog.Logger
	limit    *int
	pageSize int

	batchMu sync.Mutex
	batch   *index.Batch
}

func NewMessageRepository(db *badger.DB, search *bluge.Writer, log *slog.Logger, limit *int, pageSize int) *MessageRepository {
	return &MessageRepository{
		db:       db,
		search:   search,
		log:      log,
		limit:    limit,
		pageSize: pageSize,
		batch:    bluge.NewBatch(),
	}
}

// DiskMessage is the stored representation of a message.
type DiskMessage struct {
	ID         uuid.UUID `json:"id"`
	Source     string    `json:"source"`
	Sender     string    `json:"sender"`
	Content    string    `json:"content"`
	ReceivedAt time.Time `json:"received_at"`
	Status     string    `json:"status"`
	Category   string    `json:"category"`
	Language   string    `json:"language,omitempty"`
	Answered   bool      `json:"answered"`
	Ignored    bool      `json:"ignored"`
}

// messageKey builds "msg:{status}:{timestamp_padded}:{uuid}" so that a
// prefix scan per status walks messages in arrival order:
//  1. The 19-digit zero padding makes lexicographic order chronological.
//  2. The UUID suffix disambiguates two messages on the same nanosecond.
func messageKey(status domain.Status, receivedAt time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", status, receivedAt.UnixNano(), id))
}

// messageIndexKey maps an id to its current primary key, so status moves
// stay reachable by id without scanning.
func messageIndexKey(id uuid.UUID) []byte {
	return []byte("idx:msg:" + id.String())
}

func (m *MessageRepository) Store(message domain.Message) error {
	data, err := json.Marshal(fromMessage(message))
	if err != nil {
		return err
	}

	key := messageKey(message.Status, message.ReceivedAt, message.ID)
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(messageIndexKey(message.ID), key)
	})
	if err != nil {
		return fmt.Errorf("store message %s: %w", message.ID, err)
	}

	m.indexForSearch(message)
	return nil
}

func (m *MessageRepository) indexForSearch(message domain.Message) {
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField("content", message.Content).StoreValue()).
		AddField(bluge.NewTextField("sender", message.Sender)).
		AddField(bluge.NewKeywordField("source", string(message.Source))).
		AddField(bluge.NewKeywordField("category", string(message.Category)))

	m.batchMu.Lock()
	m.batch.Update(doc.ID(), doc)
	m.batchMu.Unlock()
}

// Flush commits the pending search batch. The dispatcher calls this once
// per tick rather than paying a segment introduction per message.
func (m *MessageRepository) Flush() error {
	m.batchMu.Lock()
	defer m.batchMu.Unlock()

	if err := m.search.Batch(m.batch); err != nil {
		return err
	}
	m.batch.Reset()
	return nil
}

func (m *MessageRepository) FetchByID(id uuid.UUID) (domain.Message, error) {
	var disk DiskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		primary, err := resolveKey(txn, messageIndexKey(id))
		if err != nil {
			return err
		}
		item, err := txn.Get(primary)
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &disk)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Message{}, fmt.Errorf("%w: %s", errors.ErrMessageNotFound, id)
	}
	if err != nil {
		return domain.Message{}, err
	}
	return toMessage(disk), nil
}

// ListByStatus walks one status prefix in key order, which is arrival
// order thanks to the padded timestamp. It stops at the configured limit.
func (m *MessageRepository) ListByStatus(status domain.Status) ([]domain.Message, error) {
	var diskMessages []DiskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(fmt.Sprintf("msg:%s:", status))
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if m.limit != nil && len(diskMessages) == *m.limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limit))
				break
			}
			var disk DiskMessage
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &disk)
			})
			if err != nil {
				return err
			}
			diskMessages = append(diskMessages, disk)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return lo.Map(diskMessages, func(disk DiskMessage, _ int) domain.Message {
		return toMessage(disk)
	}), nil
}

// NextPending returns the oldest pending message.
func (m *MessageRepository) NextPending() (domain.Message, error) {
	var disk DiskMessage
	found := false
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("msg:pending:")
		it.Seek(prefix)
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		found = true
		return it.Item().Value(func(value []byte) error {
			return json.Unmarshal(value, &disk)
		})
	})
	if err != nil {
		return domain.Message{}, err
	}
	if !found {
		return domain.Message{}, errors.ErrNoPendingMessages
	}
	return toMessage(disk), nil
}

// UpdateStatus moves a message between status prefixes atomically:
// delete the old key, write the new one and repoint the id index in a
// single transaction.
func (m *MessageRepository) UpdateStatus(id uuid.UUID, to domain.Status) (domain.Message, error) {
	var updated domain.Message
	err := m.db.Update(func(txn *badger.Txn) error {
		indexKey := messageIndexKey(id)
		primary, err := resolveKey(txn, indexKey)
		if err != nil {
			return err
		}
		item, err := txn.Get(primary)
		if err != nil {
			return err
		}

		var disk DiskMessage
		if err := item.Value(func(value []byte) error {
			return json.Unmarshal(value, &disk)
		}); err != nil {
			return err
		}

		from := domain.Status(disk.Status)
		if !allowedTransition(from, to) {
			return fmt.Errorf("%w: %s -> %s", errors.ErrInvalidStatusChange, from, to)
		}

		disk.Status = string(to)
		switch to {
		case domain.StatusAnswered:
			disk.Answered = true
		case domain.StatusIgnored:
			disk.Ignored = true
		}

		data, err := json.Marshal(disk)
		if err != nil {
			return err
		}

		if err := txn.Delete(primary); err != nil {
			return err
		}
		if err := txn.Set(messageKey(to, disk.ReceivedAt, id), data); err != nil {
			return err
		}
		if err := txn.Set(indexKey, messageKey(to, disk.ReceivedAt, id)); err != nil {
			return err
		}

		updated = toMessage(disk)
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Message{}, fmt.Errorf("%w: %s", errors.ErrMessageNotFound, id)
	}
	if err != nil {
		return domain.Message{}, err
	}
	return updated, nil
}

func (m *MessageRepository) CountByStatus() (map[domain.Status]int, error) {
	counts := make(map[domain.Status]int)
	err := m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte("msg:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			parts := strings.SplitN(string(it.Item().Key()), ":", 3)
			if len(parts) == 3 {
				counts[domain.Status(parts[1])]++
			}
		}
		return nil
	})
	return counts, err
}

// Search runs a full-text query against Bluge, then resolves each hit
// back to its stored message. Only flushed documents can match.
func (m *MessageRepository) Search(ctx context.Context, terms string, source domain.Source, offset int) ([]domain.Message, uint64, error) {
	reader, err := m.search.Reader()
	if err != nil {
		return nil, 0, err
	}
	defer reader.Close()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("content"))
	if source != "" {
		query.AddMust(bluge.NewTermQuery(string(source)).SetField("source"))
	}

	request := bluge.NewTopNSearch(m.pageSize, query).
		SetFrom(offset).
		WithStandardAggregations()
	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, 0, err
	}

	var ids []uuid.UUID
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, 0, err
		}
		if match == nil {
			break
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				if id, parseErr := uuid.Parse(string(value)); parseErr == nil {
					ids = append(ids, id)
				}
			}
			return true
		})
		if err != nil {
			return nil, 0, err
		}
	}

	messages := make([]domain.Message, 0, len(ids))
	for _, id := range ids {
		message, err := m.FetchByID(id)
		if err != nil {
			// The index can briefly outlive a reset, skip orphan hits
			m.log.Debug("search hit without stored message", "id", id)
			continue
		}
		messages = append(messages, message)
	}
	return messages, iterator.Aggregations().Count(), nil
}

// ResetAll wipes every message from both stores.
func (m *MessageRepository) ResetAll() error {
	var ids []string
	err := m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte("idx:msg:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.batchMu.Lock()
	for _, id := range ids {
		m.batch.Delete(bluge.Identifier(id))
	}
	err = m.search.Batch(m.batch)
	m.batch.Reset()
	m.batchMu.Unlock()
	if err != nil {
		return err
	}

	return m.db.DropPrefix([]byte("msg:"), []byte("idx:msg:"))
}

func resolveKey(txn *badger.Txn, indexKey []byte) ([]byte, error) {
	item, err := txn.Get(indexKey)
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func allowedTransition(from, to domain.Status) bool {
	switch from {
	case domain.StatusPending:
		return to == domain.StatusProcessing || to == domain.StatusAnswered || to == domain.StatusIgnored
	case domain.StatusProcessing:
		return to == domain.StatusAnswered || to == domain.StatusIgnored
	default:
		return false
	}
}

func fromMessage(message domain.Message) DiskMessage {
	return DiskMessage{
		ID:         message.ID,
		Source:     string(message.Source),
		Sender:     message.Sender,
		Content:    message.Content,
		ReceivedAt: message.ReceivedAt.UTC(),
		Status:     string(message.Status),
		Category:   string(message.Category),
		Language:   message.Language,
		Answered:   message.Answered,
		Ignored:    message.Ignored,
	}
}

func toMessage(disk DiskMessage) domain.Message {
	return domain.Message{
		ID:         disk.ID,
		Source:     domain.Source(disk.Source),
		Sender:     disk.Sender,
		Content:    disk.Content,
		ReceivedAt: disk.ReceivedAt,
		Status:     domain.Status(disk.Status),
		Category:   domain.Category(disk.Category),
		Language:   disk.Language,
		Answered:   disk.Answered,
		Ignored:    disk.Ignored,
	}
}
