package domain

import (
	"strings"
	"time"

	"chatline/errors"

	"github.com/samber/lo"
)

// Chat is a conversation between two users (direct) or three or more
// users (group). A direct chat is unique per unordered pair of users;
// the repository enforces that with its pair index.
type Chat struct {
	ID          string
	IsGroupChat bool
	Name        string
	UserIDs     []string
	Users       []PublicUser // resolved members, password hash excluded
	LastMessage *Message     // resolved, nil until the first message
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewDirectChat builds an unpersisted direct chat between two distinct users.
func NewDirectChat(requesterID, targetID string) (Chat, error) {
	if requesterID == "" || targetID == "" {
		return Chat{}, errors.NewValidation("User ID is required")
	}
	if requesterID == targetID {
		return Chat{}, errors.NewValidation("cannot open a chat with yourself")
	}
	return Chat{
		IsGroupChat: false,
		UserIDs:     []string{requesterID, targetID},
	}, nil
}

// NewGroupChat builds an unpersisted group chat. The persisted member set is
// memberIDs plus the creator; it must end up with at least three users.
func NewGroupChat(creatorID, name string, memberIDs []string) (Chat, error) {
	name = strings.TrimSpace(name)
	if creatorID == "" {
		return Chat{}, errors.NewValidation("creator is required")
	}
	members := lo.Uniq(lo.Filter(memberIDs, func(id string, _ int) bool {
		return id != "" && id != creatorID
	}))
	if name == "" || len(members) < 2 {
		return Chat{}, errors.NewValidation("Please provide a group name and at least 2 users")
	}
	return Chat{
		IsGroupChat: true,
		Name:        name,
		UserIDs:     append(members, creatorID),
	}, nil
}

// OtherParticipant returns the member a direct chat is held with, from the
// viewer's perspective. Undefined for group chats, which render Name instead.
func (c Chat) OtherParticipant(viewerID string) (PublicUser, bool) {
	if c.IsGroupChat {
		return PublicUser{}, false
	}
	return lo.Find(c.Users, func(u PublicUser) bool { return u.ID != viewerID })
}

// HasMember reports whether a user belongs to the chat.
func (c Chat) HasMember(userID string) bool {
	return lo.Contains(c.UserIDs, userID)
}
