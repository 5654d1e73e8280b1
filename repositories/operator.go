//go:generate go run go.uber.org/mock/mockgen -source=operator.go -destination=../mocks/mock_operator_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"replydesk/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IOperatorRepository interface {
	CreateOperator(name, hashedPassword string) (string, error)
	GetOperatorByName(name string) (Operator, error)
}

type OperatorRepository struct {
	db *badger.DB
}

func NewOperatorRepository(db *badger.DB) IOperatorRepository {
	return &OperatorRepository{db: db}
}

// Operator is the stored account of a human using the command surface.
type Operator struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateOperator persists a new account and returns its generated ID.
// The password arrives already hashed.
func (o OperatorRepository) CreateOperator(name, hashedPassword string) (string, error) {
	operator := Operator{
		ID:           uuid.New().String(),
		Name:         name,
		PasswordHash: hashedPassword,
		Roles:        []string{"operator"},
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(operator)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = o.db.Update(func(txn *badger.Txn) error {
		key := []byte("operator:" + name)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrOperatorExists
		}
		return txn.Set(key, data)
	})

	return operator.ID, err
}

func (o OperatorRepository) GetOperatorByName(name string) (Operator, error) {
	var operator Operator

	err := o.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("operator:" + name))
		if err != nil {
			return err // Mapped to a credentials failure by the service
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &operator)
		})
	})
	if err != nil {
		return Operator{}, err
	}
	return operator, nil
}
