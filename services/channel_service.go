package services

import (
	"fmt"

	"slack-chat/auth"
	"slack-chat/domain"
	"slack-chat/errors"
	"slack-chat/repositories"

	"github.com/google/uuid"
)

type IChannelService interface {
	Create(name, description string, isPrivate bool, creator string) (domain.Channel, error)
	Get(channelID uuid.UUID) (domain.Channel, error)
	Join(channelID uuid.UUID, username string) (domain.Channel, error)
	Leave(channelID uuid.UUID, username string) (domain.Channel, error)
	ListPublic() ([]domain.Channel, error)
	ListForMember(username string) ([]domain.Channel, error)
}

type ChannelService struct {
	channelRepository repositories.IChannelRepository
}

func NewChannelService(repo repositories.IChannelRepository) IChannelService {
	return &ChannelService{channelRepository: repo}
}

func (s *ChannelService) Create(name, description string, isPrivate bool, creator string) (domain.Channel, error) {
	valReq := auth.ChannelRequest{
		Name:        name,
		Description: description,
	}

	// 1. Validate the channel fields before touching storage
	if err := auth.ValidateChannel(valReq); err != nil {
		return domain.Channel{}, fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}

	// 2. Build the channel; the creator is a member from the first instant
	channel := domain.NewChannel(name, description, isPrivate, creator)

	// 3. Persist; the repository claims the name and reports ErrChannelNameTaken
	if err := s.channelRepository.CreateChannel(channel); err != nil {
		return domain.Channel{}, err
	}

	return channel, nil
}

func (s *ChannelService) Get(channelID uuid.UUID) (domain.Channel, error) {
	return s.channelRepository.GetByID(channelID)
}

// Join adds the user to the member set. Joining a channel the user already
// belongs to succeeds without changing anything.
func (s *ChannelService) Join(channelID uuid.UUID, username string) (domain.Channel, error) {
	channel, err := s.channelRepository.GetByID(channelID)
	if err != nil {
		return domain.Channel{}, err
	}

	if channel.IsMember(username) {
		return channel, nil
	}

	channel.AddMember(username)
	if err := s.channelRepository.Save(channel); err != nil {
		return domain.Channel{}, err
	}
	return channel, nil
}

// Leave removes the user from the member set. Leaving a channel the user
// never joined is a no-op, not an error.
func (s *ChannelService) Leave(channelID uuid.UUID, username string) (domain.Channel, error) {
	channel, err := s.channelRepository.GetByID(channelID)
	if err != nil {
		return domain.Channel{}, err
	}

	if !channel.IsMember(username) {
		return channel, nil
	}

	channel.RemoveMember(username)
	if err := s.channelRepository.Save(channel); err != nil {
		return domain.Channel{}, err
	}
	return channel, nil
}

func (s *ChannelService) ListPublic() ([]domain.Channel, error) {
	return s.channelRepository.ListPublic()
}

func (s *ChannelService) ListForMember(username string) ([]domain.Channel, error) {
	return s.channelRepository.ListForMember(username)
}
