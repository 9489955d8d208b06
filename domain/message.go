package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	TypeText   MessageType = "TEXT"
	TypeImage  MessageType = "IMAGE"
	TypeFile   MessageType = "FILE"
	TypeSystem MessageType = "SYSTEM"
)

// Message represents a chat event scoped to a channel. Sender, ChannelID and
// CreatedAt are immutable once written; only Content and UpdatedAt change,
// and only at the hand of the original sender.
type Message struct {
	ID        uuid.UUID   `json:"id"`
	ChannelID uuid.UUID   `json:"channelId"`
	Sender    string      `json:"sender"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	Lang      string      `json:"lang,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
