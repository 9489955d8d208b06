package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"slack-chat/auth"
	"slack-chat/domain"
	"slack-chat/errors"
	"slack-chat/moderation"
	"slack-chat/repositories"

	"github.com/abadojack/whatlanggo"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

type IMessageService interface {
	Post(ctx context.Context, cmd PostMessageCommand) (domain.Message, error)
	Edit(ctx context.Context, messageID uuid.UUID, newContent, actor string) (domain.Message, error)
	Delete(ctx context.Context, messageID uuid.UUID, actor string) error
	Recent(channelID uuid.UUID, limit int) ([]domain.Message, error)
	Page(channelID uuid.UUID, pageIndex, pageSize int) ([]domain.Message, error)
	Search(ctx context.Context, channelID uuid.UUID, terms string, limit int) ([]domain.Message, error)
}

// PostMessageCommand carries everything needed to append one message.
// Attachment is the raw bytes of an optional upload; its content type is
// sniffed, never trusted from the client.
type PostMessageCommand struct {
	ChannelID  uuid.UUID
	Author     string
	Content    string
	Attachment []byte
}

type MessageService struct {
	messageRepository repositories.IMessageRepository
	channelRepository repositories.IChannelRepository
	searchRepository  repositories.ISearchRepository
	moderator         moderation.Moderator
	log               *slog.Logger
}

func NewMessageService(
	messages repositories.IMessageRepository,
	channels repositories.IChannelRepository,
	search repositories.ISearchRepository,
	moderator moderation.Moderator,
	log *slog.Logger,
) IMessageService {
	return &MessageService{
		messageRepository: messages,
		channelRepository: channels,
		searchRepository:  search,
		moderator:         moderator,
		log:               log,
	}
}

func (s *MessageService) Post(ctx context.Context, cmd PostMessageCommand) (domain.Message, error) {
	valReq := auth.MessageRequest{Content: cmd.Content}

	// 1. Validate the content bounds before anything else
	if err := auth.ValidateMessage(valReq); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}

	// 2. Resolve the channel and check membership
	channel, err := s.channelRepository.GetByID(cmd.ChannelID)
	if err != nil {
		return domain.Message{}, err
	}
	if !domain.CanAct(cmd.Author, channel, domain.Message{}, domain.ActionPost) {
		return domain.Message{}, errors.ErrNotAMember
	}

	// 3. Censor before persisting so the raw content never reaches storage
	content, matches := s.moderator.Censor(cmd.Content)
	if len(matches) > 0 {
		s.log.Info("Message censored",
			"channel_id", cmd.ChannelID, "author", cmd.Author, "matches", len(matches))
	}

	now := time.Now().UTC()
	message := domain.Message{
		ID:        uuid.New(),
		ChannelID: channel.ID,
		Sender:    cmd.Author,
		Content:   content,
		Type:      classifyAttachment(cmd.Attachment),
		Lang:      detectLang(content),
		CreatedAt: now,
		UpdatedAt: now,
	}

	// 4. Append to the ledger, then index. The ledger is the source of truth;
	// a failed index write is logged and repaired on the next update.
	if err := s.messageRepository.StoreMessage(message); err != nil {
		return domain.Message{}, err
	}
	if err := s.searchRepository.IndexMessage(message.ID, message.ChannelID, message.Content); err != nil {
		s.log.Warn("Failed to index message", "message_id", message.ID, "error", err)
	}

	return message, nil
}

func (s *MessageService) Edit(ctx context.Context, messageID uuid.UUID, newContent, actor string) (domain.Message, error) {
	valReq := auth.MessageRequest{Content: newContent}
	if err := auth.ValidateMessage(valReq); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}

	// 1. Resolve the message first: an unknown id is a 404 even for non-owners
	message, err := s.messageRepository.GetMessage(messageID)
	if err != nil {
		return domain.Message{}, err
	}

	channel, err := s.channelRepository.GetByID(message.ChannelID)
	if err != nil {
		return domain.Message{}, err
	}

	// 2. Only the sender may rewrite a message
	if !domain.CanAct(actor, channel, message, domain.ActionEdit) {
		return domain.Message{}, errors.ErrNotOwner
	}

	// 3. Edits pass through moderation like fresh content
	content, _ := s.moderator.Censor(newContent)
	message.Content = content
	message.Lang = detectLang(content)
	message.UpdatedAt = time.Now().UTC()

	if err := s.messageRepository.UpdateMessage(message); err != nil {
		return domain.Message{}, err
	}
	if err := s.searchRepository.IndexMessage(message.ID, message.ChannelID, message.Content); err != nil {
		s.log.Warn("Failed to reindex message", "message_id", message.ID, "error", err)
	}

	return message, nil
}

func (s *MessageService) Delete(ctx context.Context, messageID uuid.UUID, actor string) error {
	message, err := s.messageRepository.GetMessage(messageID)
	if err != nil {
		return err
	}

	channel, err := s.channelRepository.GetByID(message.ChannelID)
	if err != nil {
		return err
	}

	if !domain.CanAct(actor, channel, message, domain.ActionDelete) {
		return errors.ErrNotOwner
	}

	if err := s.messageRepository.DeleteMessage(messageID); err != nil {
		return err
	}
	if err := s.searchRepository.DeleteMessage(messageID); err != nil {
		s.log.Warn("Failed to drop message from index", "message_id", messageID, "error", err)
	}
	return nil
}

func (s *MessageService) Recent(channelID uuid.UUID, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = repositories.DefaultRecentLimit
	}
	return s.messageRepository.Recent(channelID, limit)
}

func (s *MessageService) Page(channelID uuid.UUID, pageIndex, pageSize int) ([]domain.Message, error) {
	return s.messageRepository.Page(channelID, pageIndex, pageSize)
}

// Search resolves index hits back through the ledger so callers always see
// the stored message, never a stale index copy.
func (s *MessageService) Search(ctx context.Context, channelID uuid.UUID, terms string, limit int) ([]domain.Message, error) {
	ids, err := s.searchRepository.Search(ctx, channelID, terms, limit)
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(ids))
	for _, id := range ids {
		message, err := s.messageRepository.GetMessage(id)
		if err != nil {
			if errors.Is(err, errors.ErrMessageNotFound) {
				continue // deleted since last index write
			}
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func detectLang(content string) string {
	info := whatlanggo.Detect(content)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}

func classifyAttachment(attachment []byte) domain.MessageType {
	if len(attachment) == 0 {
		return domain.TypeText
	}
	if strings.HasPrefix(mimetype.Detect(attachment).String(), "image/") {
		return domain.TypeImage
	}
	return domain.TypeFile
}
