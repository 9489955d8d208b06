// Package domain contains core concepts of the chat system.
// This file defines User entities and their outward-facing views.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"
)

// User is the root identity entity. PasswordHash is an opaque one-way
// credential and must never cross the API boundary.
type User struct {
	Username     string
	Email        string
	PasswordHash string
	DisplayName  string
	Bio          string
	CreatedAt    time.Time
	LastActive   time.Time
	Online       bool
}

// UserView is the redacted shape handed to callers.
type UserView struct {
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Bio         string    `json:"bio"`
	CreatedAt   time.Time `json:"createdAt"`
	LastActive  time.Time `json:"lastActive"`
	Online      bool      `json:"online"`
}

func (u User) View() UserView {
	return UserView{
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		CreatedAt:   u.CreatedAt,
		LastActive:  u.LastActive,
		Online:      u.Online,
	}
}
