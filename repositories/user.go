//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"

	"github.com/dgraph-io/badger/v4"

	"slack-chat/domain"
	"slack-chat/errors"
)

type IUserRepository interface {
	CreateUser(user domain.User) error
	GetByUsername(username string) (domain.User, error)
	GetByEmail(email string) (domain.User, error)
	ExistsByUsername(username string) (bool, error)
	ExistsByEmail(email string) (bool, error)
	Save(user domain.User) error
}

// UserRepository persists users in BadgerDB. Two key families are used:
//   - "user:{username}"   -> JSON user record (primary)
//   - "useremail:{email}" -> username (secondary index for email lookup)
//
// Both entries are written in a single transaction so username and email
// uniqueness hold under concurrent registrations.
type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

func userKey(username string) []byte { return []byte("user:" + username) }
func emailKey(email string) []byte   { return []byte("useremail:" + email) }

func (u UserRepository) CreateUser(user domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	return u.db.Update(func(txn *badger.Txn) error {
		// Username is checked before email: when both conflict, the username
		// conflict is the one reported.
		if _, err := txn.Get(userKey(user.Username)); err == nil {
			return errors.ErrUsernameTaken
		}
		if _, err := txn.Get(emailKey(user.Email)); err == nil {
			return errors.ErrEmailTaken
		}
		if err := txn.Set(userKey(user.Username), data); err != nil {
			return err
		}
		return txn.Set(emailKey(user.Email), []byte(user.Username))
	})
}

func (u UserRepository) GetByUsername(username string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return errors.ErrUserNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	return user, err
}

func (u UserRepository) GetByEmail(email string) (domain.User, error) {
	var username string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return errors.ErrUserNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			username = string(val)
			return nil
		})
	})
	if err != nil {
		return domain.User{}, err
	}
	return u.GetByUsername(username)
}

func (u UserRepository) ExistsByUsername(username string) (bool, error) {
	return u.exists(userKey(username))
}

func (u UserRepository) ExistsByEmail(email string) (bool, error) {
	return u.exists(emailKey(email))
}

func (u UserRepository) exists(key []byte) (bool, error) {
	var found bool
	err := u.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			found = true
			return nil
		}
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	return found, err
}

// Save upserts the primary record. Email is immutable after registration so
// the secondary index never needs a rewrite here.
func (u UserRepository) Save(user domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return u.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(user.Username), data)
	})
}
