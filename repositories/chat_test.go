package repositories

import (
	"testing"

	"chatline/domain"
	"chatline/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, users *UserRepository, name, email string) domain.User {
	t.Helper()
	user, err := users.CreateUser(name, email, "h")
	require.NoError(t, err)
	return user
}

func Test_Create_And_Find_Direct_Chat(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := NewUserRepository(db)
	chats := NewChatRepository(db)

	alice := seedUser(t, users, "Alice", "a@x.com")
	bob := seedUser(t, users, "Bob", "b@x.com")

	draft, err := domain.NewDirectChat(alice.ID, bob.ID)
	req.NoError(err)

	created, err := chats.CreateChat(draft)
	req.NoError(err)
	req.NotEmpty(created.ID)
	req.False(created.IsGroupChat)
	req.Len(created.Users, 2)
	req.Nil(created.LastMessage)

	// Pair lookup is symmetric in the user order
	found, err := chats.FindDirectChat(bob.ID, alice.ID)
	req.NoError(err)
	req.Equal(created.ID, found.ID)
}

func Test_Create_Direct_Chat_Twice(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := NewUserRepository(db)
	chats := NewChatRepository(db)

	alice := seedUser(t, users, "Alice", "a@x.com")
	bob := seedUser(t, users, "Bob", "b@x.com")

	draft, err := domain.NewDirectChat(alice.ID, bob.ID)
	req.NoError(err)

	_, err = chats.CreateChat(draft)
	req.NoError(err)

	// Same pair again, regardless of order
	reversed, err := domain.NewDirectChat(bob.ID, alice.ID)
	req.NoError(err)
	_, err = chats.CreateChat(reversed)
	req.ErrorIs(err, errors.ErrChatAlreadyExists)
}

func Test_Find_Direct_Chat_Unknown_Pair(t *testing.T) {
	req := require.New(t)
	chats := NewChatRepository(openTestDB(t))

	_, err := chats.FindDirectChat("alice", "bob")
	req.True(errors.IsNotFound(err))
}

func Test_Create_Group_Chat(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := NewUserRepository(db)
	chats := NewChatRepository(db)

	alice := seedUser(t, users, "Alice", "a@x.com")
	bob := seedUser(t, users, "Bob", "b@x.com")
	clara := seedUser(t, users, "Clara", "c@x.com")

	draft, err := domain.NewGroupChat(alice.ID, "devops", []string{bob.ID, clara.ID})
	req.NoError(err)

	created, err := chats.CreateChat(draft)
	req.NoError(err)
	req.True(created.IsGroupChat)
	req.Equal("devops", created.Name)
	req.Len(created.Users, 3)

	// No pair index for groups: a second identical group is allowed
	_, err = chats.CreateChat(draft)
	req.NoError(err)
}

func Test_Find_Chats_For_User_Most_Recent_First(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := NewUserRepository(db)
	chats := NewChatRepository(db)
	messages := NewMessageRepository(db)

	alice := seedUser(t, users, "Alice", "a@x.com")
	bob := seedUser(t, users, "Bob", "b@x.com")
	clara := seedUser(t, users, "Clara", "c@x.com")

	withBob, err := domain.NewDirectChat(alice.ID, bob.ID)
	req.NoError(err)
	first, err := chats.CreateChat(withBob)
	req.NoError(err)

	withClara, err := domain.NewDirectChat(alice.ID, clara.ID)
	req.NoError(err)
	second, err := chats.CreateChat(withClara)
	req.NoError(err)

	// A new message moves the older chat back to the front
	_, err = messages.AppendMessage(first.ID, bob.ID, domain.MessageText, "hi", "")
	req.NoError(err)

	list, err := chats.FindChatsForUser(alice.ID)
	req.NoError(err)
	req.Len(list, 2)
	req.Equal(first.ID, list[0].ID)
	req.Equal(second.ID, list[1].ID)

	// Bob only sees his own chat
	list, err = chats.FindChatsForUser(bob.ID)
	req.NoError(err)
	req.Len(list, 1)
	req.Equal(first.ID, list[0].ID)
}

func Test_Find_Chat_By_ID_Unknown(t *testing.T) {
	req := require.New(t)
	chats := NewChatRepository(openTestDB(t))

	_, err := chats.FindChatByID("missing")
	req.True(errors.IsNotFound(err))
	req.NotErrorIs(err, badger.ErrKeyNotFound)
}
