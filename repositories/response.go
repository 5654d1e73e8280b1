//go:generate go run go.uber.org/mock/mockgen -source=response.go -destination=../mocks/mock_response_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"replydesk/domain"
	"replydesk/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IResponseRepository interface {
	Store(response domain.Response) error
	FetchByID(id uuid.UUID) (domain.Response, error)
	ListByMessage(messageID uuid.UUID) ([]domain.Response, error)
	UpdateContent(id uuid.UUID, content string) (domain.Response, error)
	MarkSent(id uuid.UUID, at time.Time) (domain.Response, error)
	ResetAll() error
}

// ResponseRepository stores drafted and manual responses, grouped under
// their message so one scan lists a message's whole response history.
type ResponseRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewResponseRepository(db *badger.DB, log *slog.Logger) *ResponseRepository {
	return &ResponseRepository{db: db, log: log}
}

type DiskResponse struct {
	ID        uuid.UUID  `json:"id"`
	MessageID uuid.UUID  `json:"message_id"`
	Content   string     `json:"content"`
	Kind      string     `json:"kind"`
	IsSent    bool       `json:"is_sent"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// responseKey is "resp:{message_id}:{timestamp_padded}:{uuid}", keeping a
// message's responses together and in creation order.
func responseKey(messageID uuid.UUID, createdAt time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("resp:%s:%019d:%s", messageID, createdAt.UnixNano(), id))
}

func responseIndexKey(id uuid.UUID) []byte {
	return []byte("idx:resp:" + id.String())
}

func (r *ResponseRepository) Store(response domain.Response) error {
	data, err := json.Marshal(fromResponse(response))
	if err != nil {
		return err
	}

	key := responseKey(response.MessageID, response.CreatedAt, response.ID)
	err = r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(responseIndexKey(response.ID), key)
	})
	if err != nil {
		return fmt.Errorf("store response %s: %w", response.ID, err)
	}
	return nil
}

func (r *ResponseRepository) FetchByID(id uuid.UUID) (domain.Response, error) {
	disk, err := r.fetchDisk(id)
	if err != nil {
		return domain.Response{}, err
	}
	return toResponse(disk), nil
}

func (r *ResponseRepository) ListByMessage(messageID uuid.UUID) ([]domain.Response, error) {
	var diskResponses []DiskResponse
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(fmt.Sprintf("resp:%s:", messageID))
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var disk DiskResponse
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &disk)
			})
			if err != nil {
				return err
			}
			diskResponses = append(diskResponses, disk)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return lo.Map(diskResponses, func(disk DiskResponse, _ int) domain.Response {
		return toResponse(disk)
	}), nil
}

// UpdateContent overwrites a response body in place. This is the edit
// action; the kind and sent state are untouched.
func (r *ResponseRepository) UpdateContent(id uuid.UUID, content string) (domain.Response, error) {
	return r.mutate(id, func(disk *DiskResponse) error {
		disk.Content = content
		return nil
	})
}

// MarkSent flips the sent flag exactly once.
func (r *ResponseRepository) MarkSent(id uuid.UUID, at time.Time) (domain.Response, error) {
	return r.mutate(id, func(disk *DiskResponse) error {
		if disk.IsSent {
			return fmt.Errorf("%w: %s", errors.ErrAlreadySent, disk.ID)
		}
		disk.IsSent = true
		sentAt := at.UTC()
		disk.SentAt = &sentAt
		return nil
	})
}

func (r *ResponseRepository) mutate(id uuid.UUID, apply func(disk *DiskResponse) error) (domain.Response, error) {
	var updated domain.Response
	err := r.db.Update(func(txn *badger.Txn) error {
		primary, err := resolveKey(txn, responseIndexKey(id))
		if err != nil {
			return err
		}
		item, err := txn.Get(primary)
		if err != nil {
			return err
		}

		var disk DiskResponse
		if err := item.Value(func(value []byte) error {
			return json.Unmarshal(value, &disk)
		}); err != nil {
			return err
		}

		if err := apply(&disk); err != nil {
			return err
		}

		data, err := json.Marshal(disk)
		if err != nil {
			return err
		}
		if err := txn.Set(primary, data); err != nil {
			return err
		}

		updated = toResponse(disk)
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Response{}, fmt.Errorf("%w: %s", errors.ErrResponseNotFound, id)
	}
	if err != nil {
		return domain.Response{}, err
	}
	return updated, nil
}

func (r *ResponseRepository) fetchDisk(id uuid.UUID) (DiskResponse, error) {
	var disk DiskResponse
	err := r.db.View(func(txn *badger.Txn) error {
		primary, err := resolveKey(txn, responseIndexKey(id))
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
		return DiskResponse{}, fmt.Errorf("%w: %s", errors.ErrResponseNotFound, id)
	}
	if err != nil {
		return DiskResponse{}, err
	}
	return disk, nil
}

func (r *ResponseRepository) ResetAll() error {
	return r.db.DropPrefix([]byte("resp:"), []byte("idx:resp:"))
}

func fromResponse(response domain.Response) DiskResponse {
	return DiskResponse{
		ID:        response.ID,
		MessageID: response.MessageID,
		Content:   response.Content,
		Kind:      string(response.Kind),
		IsSent:    response.IsSent,
		SentAt:    response.SentAt,
		CreatedAt: response.CreatedAt.UTC(),
	}
}

func toResponse(disk DiskResponse) domain.Response {
	return domain.Response{
		ID:        disk.ID,
		MessageID: disk.MessageID,
		Content:   disk.Content,
		Kind:      domain.ResponseKind(disk.Kind),
		IsSent:    disk.IsSent,
		SentAt:    disk.SentAt,
		CreatedAt: disk.CreatedAt,
	}
}
