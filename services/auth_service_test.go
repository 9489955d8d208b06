package services

import (
	"testing"
	"time"

	"slack-chat/auth"
	"slack-chat/domain"
	"slack-chat/errors"
	"slack-chat/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(mockRepo, 24*time.Hour)

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		password := "ComplexPass123!"

		var stored domain.User
		mockRepo.EXPECT().
			CreateUser(gomock.Any()).
			DoAndReturn(func(user domain.User) error {
				stored = user
				return nil
			}).
			Times(1)

		view, err := svc.Register("alice", "alice@example.com", password)

		req.NoError(err)
		req.Equal("alice", view.Username)
		req.Equal("alice", view.DisplayName)

		// The plain password must never reach the repository
		req.NotEqual(password, stored.PasswordHash)
		match, err := auth.ComparePassword(password, stored.PasswordHash)
		req.NoError(err)
		req.True(match)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)

		// Repository should NEVER be called
		mockRepo.EXPECT().CreateUser(gomock.Any()).Times(0)

		_, err := svc.Register("alice", "alice@example.com", "simplesimple")

		req.Error(err)
		req.ErrorIs(err, errors.ErrInvalidPassword)
	})

	t.Run("should propagate username conflict from repository", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			CreateUser(gomock.Any()).
			Return(errors.ErrUsernameTaken).
			Times(1)

		_, err := svc.Register("alice", "alice@example.com", "ComplexPass123!")

		req.ErrorIs(err, errors.ErrUsernameTaken)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(mockRepo, 24*time.Hour)

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)
		password := "Secret123456!"

		hashedPassword, _ := auth.HashPassword(password)
		storedUser := domain.User{
			Username:     "alice",
			Email:        "alice@example.com",
			PasswordHash: hashedPassword,
		}

		mockRepo.EXPECT().
			GetByUsername("alice").
			Return(storedUser, nil).
			Times(1)

		var saved domain.User
		mockRepo.EXPECT().
			Save(gomock.Any()).
			DoAndReturn(func(user domain.User) error {
				saved = user
				return nil
			}).
			Times(1)

		token, view, err := svc.Login("alice", password)

		req.NoError(err)
		req.NotEmpty(token)
		req.True(view.Online)
		req.True(saved.Online)

		claims, err := auth.ValidateToken(string(token))
		req.NoError(err)
		req.Equal("alice", claims.Username)
	})

	t.Run("should return invalid credentials when password is wrong", func(t *testing.T) {
		req := require.New(t)

		hashedPassword, _ := auth.HashPassword("CorrectPassword123!")
		storedUser := domain.User{
			Username:     "alice",
			PasswordHash: hashedPassword,
		}

		mockRepo.EXPECT().
			GetByUsername("alice").
			Return(storedUser, nil).
			Times(1)

		_, _, err := svc.Login("alice", "WrongPassword123!")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should return invalid credentials when user is not found", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetByUsername("nobody").
			Return(domain.User{}, errors.ErrUserNotFound).
			Times(1)

		_, _, err := svc.Login("nobody", "anyPassword123")

		// An unknown username must be indistinguishable from a wrong password
		req.ErrorIs(err, errors.ErrInvalidCredentials)
		req.NotErrorIs(err, errors.ErrUserNotFound)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(mockRepo, 24*time.Hour)

	t.Run("should mark the user offline", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetByUsername("alice").
			Return(domain.User{Username: "alice", Online: true}, nil).
			Times(1)

		var saved domain.User
		mockRepo.EXPECT().
			Save(gomock.Any()).
			DoAndReturn(func(user domain.User) error {
				saved = user
				return nil
			}).
			Times(1)

		req.NoError(svc.Logout("alice"))
		req.False(saved.Online)
	})

	t.Run("should succeed when the user is already offline", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetByUsername("alice").
			Return(domain.User{Username: "alice", Online: false}, nil).
			Times(1)
		mockRepo.EXPECT().Save(gomock.Any()).Return(nil).Times(1)

		req.NoError(svc.Logout("alice"))
	})
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(mockRepo, 24*time.Hour)

	t.Run("should update display name and bio", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetByUsername("alice").
			Return(domain.User{Username: "alice", DisplayName: "alice"}, nil).
			Times(1)
		mockRepo.EXPECT().Save(gomock.Any()).Return(nil).Times(1)

		view, err := svc.UpdateProfile("alice", "Alice L.", "gopher")

		req.NoError(err)
		req.Equal("Alice L.", view.DisplayName)
		req.Equal("gopher", view.Bio)
	})

	t.Run("should reject an oversized bio", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().GetByUsername(gomock.Any()).Times(0)

		longBio := make([]byte, 501)
		for i := range longBio {
			longBio[i] = 'a'
		}
		_, err := svc.UpdateProfile("alice", "Alice", string(longBio))

		req.ErrorIs(err, errors.ErrValidation)
	})
}
