//go:generate go run go.uber.org/mock/mockgen -source=channel.go -destination=../mocks/mock_channel_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"slack-chat/domain"
	"slack-chat/errors"
)

type IChannelRepository interface {
	CreateChannel(channel domain.Channel) error
	GetByID(id uuid.UUID) (domain.Channel, error)
	ExistsByName(name string) (bool, error)
	Save(channel domain.Channel) error
	ListPublic() ([]domain.Channel, error)
	ListForMember(username string) ([]domain.Channel, error)
}

// ChannelRepository persists channels in BadgerDB:
//   - "channel:{uuid}"     -> JSON channel record (primary)
//   - "channelname:{name}" -> channel id (uniqueness index, case-sensitive)
//
// Membership mutations go through Save as a read-modify-write inside the
// service layer; the store's transaction is the only atomicity boundary.
type ChannelRepository struct {
	db *badger.DB
}

func NewChannelRepository(db *badger.DB) IChannelRepository {
	return &ChannelRepository{db: db}
}

func channelKey(id uuid.UUID) []byte    { return []byte("channel:" + id.String()) }
func channelNameKey(name string) []byte { return []byte("channelname:" + name) }

func (c ChannelRepository) CreateChannel(channel domain.Channel) error {
	data, err := json.Marshal(channel)
	if err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(channelNameKey(channel.Name)); err == nil {
			return errors.ErrChannelNameTaken
		}
		if err := txn.Set(channelKey(channel.ID), data); err != nil {
			return err
		}
		return txn.Set(channelNameKey(channel.Name), []byte(channel.ID.String()))
	})
}

func (c ChannelRepository) GetByID(id uuid.UUID) (domain.Channel, error) {
	var channel domain.Channel
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(channelKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return errors.ErrChannelNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &channel)
		})
	})
	return channel, err
}

func (c ChannelRepository) ExistsByName(name string) (bool, error) {
	var found bool
	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(channelNameKey(name))
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

func (c ChannelRepository) Save(channel domain.Channel) error {
	data, err := json.Marshal(channel)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(channelKey(channel.ID), data)
	})
}

func (c ChannelRepository) ListPublic() ([]domain.Channel, error) {
	return c.list(func(ch domain.Channel) bool {
		return !ch.IsPrivate
	})
}

func (c ChannelRepository) ListForMember(username string) ([]domain.Channel, error) {
	return c.list(func(ch domain.Channel) bool {
		return ch.IsMember(username)
	})
}

// list scans the primary key family and keeps channels matching the filter.
// Badger iterates in uuid key order, so results are re-sorted by creation
// time to stay stable across calls.
func (c ChannelRepository) list(keep func(domain.Channel) bool) ([]domain.Channel, error) {
	var channels []domain.Channel
	err := c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("channel:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var channel domain.Channel
				if err := json.Unmarshal(val, &channel); err != nil {
					return err
				}
				if keep(channel) {
					channels = append(channels, channel)
				}
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

	sort.Slice(channels, func(i, j int) bool {
		return channels[i].CreatedAt.Before(channels[j].CreatedAt)
	})
	return channels, nil
}
