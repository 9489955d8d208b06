package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"slack-chat/domain"
	"slack-chat/errors"
)

func newMessage(channelID uuid.UUID, sender, content string, at time.Time) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		ChannelID: channelID,
		Sender:    sender,
		Content:   content,
		Type:      domain.TypeText,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func Test_Record_Multiple_Messages(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	channelID := uuid.New()
	at := time.Now().UTC()
	posted := []domain.Message{
		newMessage(channelID, "alice", "first", at),
		newMessage(channelID, "bob", "second", at.Add(1*time.Minute)),
		newMessage(channelID, "clara", "third", at.Add(2*time.Minute)),
	}
	for _, message := range posted {
		req.NoError(repository.StoreMessage(message))
	}

	fetched, err := repository.Recent(channelID, 50)
	req.NoError(err)
	req.Len(fetched, len(posted))
	// createdAt descending: newest first
	req.Equal("third", fetched[0].Content)
	req.Equal("first", fetched[2].Content)
}

func Test_Recent_Honors_Limit_And_Order(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	channelID := uuid.New()
	at := time.Now().UTC()
	for i, content := range []string{"m1", "m2", "m3"} {
		req.NoError(repository.StoreMessage(newMessage(channelID, "alice", content, at.Add(time.Duration(i)*time.Second))))
	}

	fetched, err := repository.Recent(channelID, 2)
	req.NoError(err)
	req.Equal([]string{"m3", "m2"}, lo.Map(fetched, func(m domain.Message, _ int) string { return m.Content }))
}

func Test_Recent_TieBreak_Is_Deterministic(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	channelID := uuid.New()
	at := time.Now().UTC()
	for _, content := range []string{"a", "b", "c"} {
		req.NoError(repository.StoreMessage(newMessage(channelID, "alice", content, at)))
	}

	first, err := repository.Recent(channelID, 50)
	req.NoError(err)
	second, err := repository.Recent(channelID, 50)
	req.NoError(err)
	req.Equal(first, second)

	// Pagination over equal timestamps must not skip or repeat entries.
	pageA, err := repository.Page(channelID, 0, 2)
	req.NoError(err)
	pageB, err := repository.Page(channelID, 1, 2)
	req.NoError(err)
	req.Len(pageA, 2)
	req.Len(pageB, 1)
	req.ElementsMatch(
		lo.Map(first, func(m domain.Message, _ int) uuid.UUID { return m.ID }),
		lo.Map(append(pageA, pageB...), func(m domain.Message, _ int) uuid.UUID { return m.ID }),
	)
}

func Test_Page_Slices_Descending_Sequence(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	channelID := uuid.New()
	at := time.Now().UTC()
	for i := 0; i < 5; i++ {
		req.NoError(repository.StoreMessage(newMessage(channelID, "alice", string(rune('a'+i)), at.Add(time.Duration(i)*time.Second))))
	}

	page, err := repository.Page(channelID, 1, 2)
	req.NoError(err)
	req.Equal([]string{"c", "b"}, lo.Map(page, func(m domain.Message, _ int) string { return m.Content }))
}

func Test_Update_Message_Content(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	channelID := uuid.New()
	message := newMessage(channelID, "alice", "tpyo", time.Now().UTC())
	req.NoError(repository.StoreMessage(message))

	message.Content = "typo"
	message.UpdatedAt = message.UpdatedAt.Add(time.Second)
	req.NoError(repository.UpdateMessage(message))

	fetched, err := repository.GetMessage(message.ID)
	req.NoError(err)
	req.Equal("typo", fetched.Content)
	req.True(fetched.UpdatedAt.After(fetched.CreatedAt))
}

func Test_Delete_Message(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	channelID := uuid.New()
	message := newMessage(channelID, "alice", "gone soon", time.Now().UTC())
	req.NoError(repository.StoreMessage(message))
	req.NoError(repository.DeleteMessage(message.ID))

	_, err := repository.GetMessage(message.ID)
	req.ErrorIs(err, errors.ErrMessageNotFound)

	err = repository.DeleteMessage(message.ID)
	req.ErrorIs(err, errors.ErrMessageNotFound)

	fetched, err := repository.Recent(channelID, 50)
	req.NoError(err)
	req.Empty(fetched)
}

func Test_Messages_Are_Scoped_To_Channel(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	channelA := uuid.New()
	channelB := uuid.New()
	at := time.Now().UTC()
	req.NoError(repository.StoreMessage(newMessage(channelA, "alice", "in A", at)))
	req.NoError(repository.StoreMessage(newMessage(channelB, "bob", "in B", at)))

	fetched, err := repository.Recent(channelA, 50)
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("in A", fetched[0].Content)
}
