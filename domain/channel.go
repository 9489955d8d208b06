package domain

import (
	"time"

	"github.com/google/uuid"
)

// Channel owns its member set. The set is the source of truth for
// "is member of"; there is no reverse collection on the User side.
type Channel struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	IsPrivate   bool                `json:"isPrivate"`
	CreatedAt   time.Time           `json:"createdAt"`
	CreatedBy   string              `json:"createdBy"`
	Members     map[string]struct{} `json:"members"`
}

// NewChannel creates a channel with the creator as its first member.
// The creator stays a member from creation onward.
func NewChannel(name, description string, isPrivate bool, creator string) Channel {
	return Channel{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		IsPrivate:   isPrivate,
		CreatedAt:   time.Now().UTC(),
		CreatedBy:   creator,
		Members:     map[string]struct{}{creator: {}},
	}
}

// AddMember is idempotent: joining twice leaves the set unchanged.
func (c *Channel) AddMember(username string) {
	if c.Members == nil {
		c.Members = make(map[string]struct{})
	}
	c.Members[username] = struct{}{}
}

// RemoveMember is a no-op when the user is not a member.
func (c *Channel) RemoveMember(username string) {
	delete(c.Members, username)
}

func (c Channel) IsMember(username string) bool {
	_, ok := c.Members[username]
	return ok
}

func (c Channel) MemberCount() int {
	return len(c.Members)
}
