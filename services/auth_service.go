package services

import (
	"fmt"
	"time"

	"slack-chat/auth"
	"slack-chat/domain"
	"slack-chat/errors"
	"slack-chat/repositories"
)

type IAuthService interface {
	Register(username, email, password string) (domain.UserView, error)
	Login(username, password string) (Token, domain.UserView, error)
	Logout(username string) error
	Profile(username string) (domain.UserView, error)
	UpdateProfile(username, displayName, bio string) (domain.UserView, error)
}

type AuthService struct {
	userRepository repositories.IUserRepository
	tokenDuration  time.Duration
}

type Token string

func (t Token) string() string {
	return string(t)
}

func NewAuthService(repo repositories.IUserRepository, tokenDuration time.Duration) IAuthService {
	return &AuthService{userRepository: repo, tokenDuration: tokenDuration}
}

func (s *AuthService) Register(username, email, password string) (domain.UserView, error) {
	valReq := auth.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}

	// 1. Validate business rules (username, email format, password complexity)
	// We check this before any expensive cryptographic operation.
	if err := auth.ValidateRegister(valReq); err != nil {
		return domain.UserView{}, fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// 2. Hash the password using Argon2id
	// Done in the service layer to keep the repository unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return domain.UserView{}, fmt.Errorf("hashing failed: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		DisplayName:  username,
		CreatedAt:    now,
		LastActive:   now,
	}

	// 3. Persist the user; the repository checks the username before the email
	// so a request taken on both counts reports the username conflict.
	if err := s.userRepository.CreateUser(user); err != nil {
		return domain.UserView{}, err
	}

	return user.View(), nil
}

func (s *AuthService) Login(username, password string) (Token, domain.UserView, error) {
	// 1. Retrieve user by username from storage
	user, err := s.userRepository.GetByUsername(username)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", domain.UserView{}, errors.ErrInvalidCredentials
	}

	// 2. Compare the provided password with the stored hash
	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", domain.UserView{}, errors.ErrInvalidCredentials
	}

	// 3. Issue the JWT token
	token, err := auth.GenerateToken(user.Username, s.tokenDuration)
	if err != nil {
		return "", domain.UserView{}, errors.ErrTokenGeneration
	}

	// 4. Mark the user online; presence is best effort and never blocks login
	user.Online = true
	user.LastActive = time.Now().UTC()
	if err := s.userRepository.Save(user); err != nil {
		return "", domain.UserView{}, err
	}

	return Token(token), user.View(), nil
}

// Logout flips the presence flag off. Logging out twice is not an error.
func (s *AuthService) Logout(username string) error {
	user, err := s.userRepository.GetByUsername(username)
	if err != nil {
		return err
	}

	user.Online = false
	user.LastActive = time.Now().UTC()
	return s.userRepository.Save(user)
}

func (s *AuthService) Profile(username string) (domain.UserView, error) {
	user, err := s.userRepository.GetByUsername(username)
	if err != nil {
		return domain.UserView{}, err
	}
	return user.View(), nil
}

func (s *AuthService) UpdateProfile(username, displayName, bio string) (domain.UserView, error) {
	valReq := auth.ProfileRequest{
		DisplayName: displayName,
		Bio:         bio,
	}
	if err := auth.ValidateProfile(valReq); err != nil {
		return domain.UserView{}, fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}

	user, err := s.userRepository.GetByUsername(username)
	if err != nil {
		return domain.UserView{}, err
	}

	if displayName != "" {
		user.DisplayName = displayName
	}
	user.Bio = bio
	user.LastActive = time.Now().UTC()

	if err := s.userRepository.Save(user); err != nil {
		return domain.UserView{}, err
	}
	return user.View(), nil
}
