package auth

import (
	"unicode"

	"github.com/go-playground/validator/v10"

	"slack-chat/errors"
)

var validate = validator.New()

type RegisterRequest struct {
	Username string `validate:"required,max=50"`
	Email    string `validate:"required,email,max=100"`
	Password string `validate:"required,min=8,max=72"`
}

type ProfileRequest struct {
	DisplayName string `validate:"max=100"`
	Bio         string `validate:"max=500"`
}

type ChannelRequest struct {
	Name        string `validate:"required,max=100"`
	Description string `validate:"max=500"`
}

type MessageRequest struct {
	Content string `validate:"required,min=1,max=2000"`
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if !isPasswordComplex(req.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

func ValidateProfile(req ProfileRequest) error {
	return validate.Struct(req)
}

func ValidateChannel(req ChannelRequest) error {
	return validate.Struct(req)
}

func ValidateMessage(req MessageRequest) error {
	return validate.Struct(req)
}

// isPasswordComplex requires at least one upper, one lower and one digit.
func isPasswordComplex(s string) bool {
	var hasUpper, hasLower, hasNumber bool
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}
	return hasUpper && hasLower && hasNumber
}
