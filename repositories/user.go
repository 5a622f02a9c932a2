//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"fmt"
	"time"

	"chatline/domain"
	"chatline/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IUserRepository interface {
	CreateUser(name, email, passwordHash string) (domain.User, error)
	GetUserByID(id string) (domain.User, error)
	GetUserByEmail(email string) (domain.User, error)
	ListUsers() ([]domain.User, error)
	UpdateUser(id, name, email string) (domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

// storedUser is the on-disk shape. Timestamps are UnixNano so the codec
// never has to care about time zones or precision.
type storedUser struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    int64
	UpdatedAt    int64
}

func userKey(id string) []byte     { return []byte("user:" + id) }
func emailKey(email string) []byte { return []byte("useremail:" + email) }

// CreateUser persists a new user. The email index key doubles as the
// uniqueness check: an existing entry rejects the write inside the same
// transaction.
func (u *UserRepository) CreateUser(name, email, passwordHash string) (domain.User, error) {
	now := time.Now().UTC()
	record := storedUser{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now.UnixNano(),
		UpdatedAt:    now.UnixNano(),
	}
	data, err := cbor.Marshal(record)
	if err != nil {
		return domain.User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(emailKey(email))
		if err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		if err := txn.Set(emailKey(email), []byte(record.ID)); err != nil {
			return err
		}
		return txn.Set(userKey(record.ID), data)
	})
	if err != nil {
		return domain.User{}, err
	}
	return toUser(record), nil
}

func (u *UserRepository) GetUserByID(id string) (domain.User, error) {
	var record storedUser
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		record, err = loadStoredUser(txn, id)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return toUser(record), nil
}

func (u *UserRepository) GetUserByEmail(email string) (domain.User, error) {
	var record storedUser
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.NewNotFound("user", email)
			}
			return err
		}
		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}
		record, err = loadStoredUser(txn, id)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return toUser(record), nil
}

// ListUsers returns every account via a prefix scan over user records.
func (u *UserRepository) ListUsers() ([]domain.User, error) {
	var records []storedUser
	err := u.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("user:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record storedUser
			if err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(records, func(r storedUser, _ int) domain.User { return toUser(r) }), nil
}

// UpdateUser changes the mutable profile fields. A changed email moves the
// email index entry, keeping uniqueness intact.
func (u *UserRepository) UpdateUser(id, name, email string) (domain.User, error) {
	var record storedUser
	err := u.db.Update(func(txn *badger.Txn) error {
		var err error
		record, err = loadStoredUser(txn, id)
		if err != nil {
			return err
		}
		if name != "" {
			record.Name = name
		}
		if email != "" && email != record.Email {
			_, err := txn.Get(emailKey(email))
			if err == nil {
				return errors.ErrUserAlreadyExists
			}
			if err != badger.ErrKeyNotFound {
				return err
			}
			if err := txn.Delete(emailKey(record.Email)); err != nil {
				return err
			}
			if err := txn.Set(emailKey(email), []byte(record.ID)); err != nil {
				return err
			}
			record.Email = email
		}
		record.UpdatedAt = time.Now().UTC().UnixNano()

		data, err := cbor.Marshal(record)
		if err != nil {
			return err
		}
		return txn.Set(userKey(record.ID), data)
	})
	if err != nil {
		return domain.User{}, err
	}
	return toUser(record), nil
}

func loadStoredUser(txn *badger.Txn, id string) (storedUser, error) {
	item, err := txn.Get(userKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return storedUser{}, errors.NewNotFound("user", id)
		}
		return storedUser{}, err
	}
	var record storedUser
	err = item.Value(func(val []byte) error {
		return cbor.Unmarshal(val, &record)
	})
	return record, err
}

func toUser(record storedUser) domain.User {
	return domain.User{
		ID:           record.ID,
		Name:         record.Name,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		CreatedAt:    time.Unix(0, record.CreatedAt).UTC(),
		UpdatedAt:    time.Unix(0, record.UpdatedAt).UTC(),
	}
}
