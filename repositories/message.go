//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"slack-chat/domain"
	"slack-chat/errors"
)

// DefaultRecentLimit caps Recent when the caller does not ask for a limit.
const DefaultRecentLimit = 50

type IMessageRepository interface {
	StoreMessage(message domain.Message) error
	GetMessage(id uuid.UUID) (domain.Message, error)
	UpdateMessage(message domain.Message) error
	DeleteMessage(id uuid.UUID) error
	Recent(channelID uuid.UUID, limit int) ([]domain.Message, error)
	Page(channelID uuid.UUID, pageIndex, pageSize int) ([]domain.Message, error)
}

// MessageRepository persists messages in BadgerDB.
// The primary key is formatted as "msg:{channel_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Keep pagination deterministic with the uuid as a stable secondary key
//     when two messages share the same timestamp.
//
// A secondary index "msgid:{uuid}" -> primary key serves edit and delete,
// which address messages by id alone. CreatedAt is immutable, so an edit
// rewrites the value under the same primary key.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) IMessageRepository {
	return &MessageRepository{db: db, log: log}
}

func messageKey(message domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s",
		message.ChannelID,
		message.CreatedAt.UnixNano(),
		message.ID,
	))
}

func messageIndexKey(id uuid.UUID) []byte { return []byte("msgid:" + id.String()) }

func channelPrefix(channelID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%s:", channelID))
}

func (m MessageRepository) StoreMessage(message domain.Message) error {
	key := messageKey(message)
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(messageIndexKey(message.ID), key)
	})
}

func (m MessageRepository) GetMessage(id uuid.UUID) (domain.Message, error) {
	var message domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		key, err := m.resolve(txn, id)
		if err != nil {
			return err
		}
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return errors.ErrMessageNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &message)
		})
	})
	return message, err
}

// UpdateMessage rewrites the record in place. The primary key is derived
// from immutable fields, so it cannot move.
func (m MessageRepository) UpdateMessage(message domain.Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		if _, err := m.resolve(txn, message.ID); err != nil {
			return err
		}
		return txn.Set(messageKey(message), data)
	})
}

func (m MessageRepository) DeleteMessage(id uuid.UUID) error {
	return m.db.Update(func(txn *badger.Txn) error {
		key, err := m.resolve(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(messageIndexKey(id))
	})
}

// Recent returns up to limit messages ordered by createdAt descending.
func (m MessageRepository) Recent(channelID uuid.UUID, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return m.scanDescending(channelID, 0, limit)
}

// Page returns a zero-based slice of the createdAt-descending sequence.
func (m MessageRepository) Page(channelID uuid.UUID, pageIndex, pageSize int) ([]domain.Message, error) {
	if pageIndex < 0 || pageSize <= 0 {
		return nil, nil
	}
	return m.scanDescending(channelID, pageIndex*pageSize, pageSize)
}

// scanDescending iterates the channel prefix in reverse. Thanks to the
// padded timestamp in the key, reverse key order is newest-first.
func (m MessageRepository) scanDescending(channelID uuid.UUID, skip, take int) ([]domain.Message, error) {
	var raw [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := channelPrefix(channelID)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible timestamp, then walk backwards.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		skipped := 0
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if skipped < skip {
				skipped++
				continue
			}
			if len(raw) == take {
				break
			}
			err := it.Item().Value(func(value []byte) error {
				raw = append(raw, append([]byte{}, value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, b := range raw {
		var message domain.Message
		if err := json.Unmarshal(b, &message); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	m.log.Debug("Messages fetched", "channel", channelID, "count", len(messages))
	return messages, nil
}

// resolve follows the id index to the primary key.
func (m MessageRepository) resolve(txn *badger.Txn, id uuid.UUID) ([]byte, error) {
	item, err := txn.Get(messageIndexKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, errors.ErrMessageNotFound
		}
		return nil, err
	}
	var key []byte
	err = item.Value(func(val []byte) error {
		key = append([]byte{}, val...)
		return nil
	})
	return key, err
}
