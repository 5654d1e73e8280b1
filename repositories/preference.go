//go:generate go run go.uber.org/mock/mockgen -source=preference.go -destination=../mocks/mock_preference_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"replydesk/domain"
	"replydesk/errors"

	"github.com/dgraph-io/badger/v4"
)

type IPreferenceRepository interface {
	Get(operator string) (domain.OperatorPreference, error)
	Save(preference domain.OperatorPreference) error
}

// PreferenceRepository persists per-operator drafting preferences. A
// missing record yields the defaults instead of an error, so a fresh
// operator can draft immediately.
type PreferenceRepository struct {
	db *badger.DB
}

func NewPreferenceRepository(db *badger.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

func preferenceKey(operator string) []byte {
	return []byte("pref:" + operator)
}

func (p *PreferenceRepository) Get(operator string) (domain.OperatorPreference, error) {
	var preference domain.OperatorPreference
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(preferenceKey(operator))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &preference)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.DefaultPreference(operator), nil
	}
	if err != nil {
		return domain.OperatorPreference{}, err
	}
	return preference, nil
}

func (p *PreferenceRepository) Save(preference domain.OperatorPreference) error {
	preference.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(preference)
	if err != nil {
		return err
	}
	err = p.db.Update(func(txn *badger.Txn) error {
		return txn.Set(preferenceKey(preference.Operator), data)
	})
	if err != nil {
		return fmt.Errorf("save preference for %s: %w", preference.Operator, err)
	}
	return nil
}
