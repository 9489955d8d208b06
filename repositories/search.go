//go:generate go run go.uber.org/mock/mockgen -source=search.go -destination=../mocks/mock_search_repository.go -package=mocks
package repositories

import (
	"context"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

type ISearchRepository interface {
	IndexMessage(id uuid.UUID, channelID uuid.UUID, content string) error
	DeleteMessage(id uuid.UUID) error
	Search(ctx context.Context, channelID uuid.UUID, terms string, limit int) ([]uuid.UUID, error)
}

// SearchRepository maintains a Bluge full-text index over message content.
// The index is derived data: the badger message store stays the source of
// truth, and search results are resolved back to message ids.
type SearchRepository struct {
	writer *bluge.Writer
}

func NewSearchRepository(writer *bluge.Writer) ISearchRepository {
	return &SearchRepository{writer: writer}
}

// IndexMessage adds or replaces the searchable view of a message.
func (s *SearchRepository) IndexMessage(id uuid.UUID, channelID uuid.UUID, content string) error {
	doc := bluge.NewDocument(id.String()).
		AddField(bluge.NewKeywordField("channel", channelID.String())).
		AddField(bluge.NewTextField("content", content))
	return s.writer.Update(doc.ID(), doc)
}

// DeleteMessage removes a message from the index.
func (s *SearchRepository) DeleteMessage(id uuid.UUID) error {
	return s.writer.Delete(bluge.Identifier(id.String()))
}

// Search returns the ids of the best-matching messages in a channel.
func (s *SearchRepository) Search(ctx context.Context, channelID uuid.UUID, terms string, limit int) ([]uuid.UUID, error) {
	reader, err := s.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	content := bluge.NewMatchQuery(terms)
	content.SetField("content")
	channel := bluge.NewTermQuery(channelID.String())
	channel.SetField("channel")

	query := bluge.NewBooleanQuery().AddMust(content, channel)

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
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
			return nil, err
		}
	}
	return ids, nil
}
