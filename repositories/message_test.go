package repositories

import (
	"fmt"
	"sync"
	"testing"

	"chatline/domain"
	"chatline/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_Append_Message_Updates_Chat(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := NewUserRepository(db)
	chats := NewChatRepository(db)
	messages := NewMessageRepository(db)

	alice := seedUser(t, users, "Alice", "a@x.com")
	bob := seedUser(t, users, "Bob", "b@x.com")
	draft, err := domain.NewDirectChat(alice.ID, bob.ID)
	req.NoError(err)
	chat, err := chats.CreateChat(draft)
	req.NoError(err)

	sent, err := messages.AppendMessage(chat.ID, alice.ID, domain.MessageText, "hi", "")
	req.NoError(err)
	req.Equal(chat.ID, sent.ChatID)
	req.Equal(alice.ID, sent.Sender.ID)
	req.Equal(domain.MessageText, sent.Type)
	req.Equal("hi", sent.Content)

	// Same transaction updated the chat's last message and activity time
	reloaded, err := chats.FindChatByID(chat.ID)
	req.NoError(err)
	req.NotNil(reloaded.LastMessage)
	req.Equal(sent.ID, reloaded.LastMessage.ID)
	req.True(reloaded.UpdatedAt.After(chat.UpdatedAt))
}

func Test_Append_Message_Unknown_Chat(t *testing.T) {
	req := require.New(t)
	messages := NewMessageRepository(openTestDB(t))

	_, err := messages.AppendMessage("missing", "alice", domain.MessageText, "hi", "")
	req.True(errors.IsNotFound(err))
}

func Test_List_Messages_Chronological(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := NewUserRepository(db)
	chats := NewChatRepository(db)
	messages := NewMessageRepository(db)

	alice := seedUser(t, users, "Alice", "a@x.com")
	bob := seedUser(t, users, "Bob", "b@x.com")
	draft, err := domain.NewDirectChat(alice.ID, bob.ID)
	req.NoError(err)
	chat, err := chats.CreateChat(draft)
	req.NoError(err)

	const count = 25
	for i := 0; i < count; i++ {
		sender := alice.ID
		if i%2 == 1 {
			sender = bob.ID
		}
		_, err := messages.AppendMessage(chat.ID, sender, domain.MessageText, fmt.Sprintf("message %d", i), "")
		req.NoError(err)
	}

	history, err := messages.ListMessages(chat.ID)
	req.NoError(err)
	req.Len(history, count)
	for i, message := range history {
		req.Equal(fmt.Sprintf("message %d", i), message.Content)
		req.NotEmpty(message.Sender.Name)
	}
	req.False(history[0].CreatedAt.After(history[count-1].CreatedAt))
}

func Test_List_Messages_Unknown_Chat(t *testing.T) {
	req := require.New(t)
	messages := NewMessageRepository(openTestDB(t))

	_, err := messages.ListMessages("missing")
	req.True(errors.IsNotFound(err))
}

func Test_Concurrent_Appends_To_Same_Chat(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := NewUserRepository(db)
	chats := NewChatRepository(db)
	messages := NewMessageRepository(db)

	alice := seedUser(t, users, "Alice", "a@x.com")
	bob := seedUser(t, users, "Bob", "b@x.com")
	draft, err := domain.NewDirectChat(alice.ID, bob.ID)
	req.NoError(err)
	chat, err := chats.CreateChat(draft)
	req.NoError(err)

	// Every append rewrites the chat record, so concurrent sends collide on
	// it; none of them may be lost.
	const writers = 8
	const perWriter = 25
	senders := []string{alice.ID, bob.ID}

	var wg sync.WaitGroup
	errCh := make(chan error, writers*perWriter)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, err := messages.AppendMessage(chat.ID, senders[w%2],
					domain.MessageText, fmt.Sprintf("writer %d message %d", w, i), "")
				if err != nil {
					errCh <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		req.NoError(err)
	}

	history, err := messages.ListMessages(chat.ID)
	req.NoError(err)
	req.Len(history, writers*perWriter)
	for i := 1; i < len(history); i++ {
		req.False(history[i].CreatedAt.Before(history[i-1].CreatedAt))
	}

	// The pointer holds whichever append committed last
	reloaded, err := chats.FindChatByID(chat.ID)
	req.NoError(err)
	req.NotNil(reloaded.LastMessage)
	ids := make(map[uuid.UUID]struct{}, len(history))
	for _, message := range history {
		ids[message.ID] = struct{}{}
	}
	req.Contains(ids, reloaded.LastMessage.ID)
}

func Test_Append_Message_Rejects_Invalid_Payload(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := NewUserRepository(db)
	chats := NewChatRepository(db)
	messages := NewMessageRepository(db)

	alice := seedUser(t, users, "Alice", "a@x.com")
	bob := seedUser(t, users, "Bob", "b@x.com")
	draft, err := domain.NewDirectChat(alice.ID, bob.ID)
	req.NoError(err)
	chat, err := chats.CreateChat(draft)
	req.NoError(err)

	// Neither content nor file
	_, err = messages.AppendMessage(chat.ID, alice.ID, domain.MessageText, "", "")
	req.True(errors.IsValidation(err))

	// Both at once
	_, err = messages.AppendMessage(chat.ID, alice.ID, domain.MessageFile, "hi", "/uploads/multimedia/1_abc.png")
	req.True(errors.IsValidation(err))

	// Unknown kind
	_, err = messages.AppendMessage(chat.ID, alice.ID, domain.MessageType("video"), "hi", "")
	req.True(errors.IsValidation(err))

	// Nothing was persisted
	history, err := messages.ListMessages(chat.ID)
	req.NoError(err)
	req.Empty(history)
}

func Test_Append_File_Message(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := NewUserRepository(db)
	chats := NewChatRepository(db)
	messages := NewMessageRepository(db)

	alice := seedUser(t, users, "Alice", "a@x.com")
	bob := seedUser(t, users, "Bob", "b@x.com")
	draft, err := domain.NewDirectChat(alice.ID, bob.ID)
	req.NoError(err)
	chat, err := chats.CreateChat(draft)
	req.NoError(err)

	sent, err := messages.AppendMessage(chat.ID, alice.ID, domain.MessageFile, "", "/uploads/multimedia/1_abc.png")
	req.NoError(err)
	req.Equal(domain.MessageFile, sent.Type)
	req.Empty(sent.Content)
	req.Equal("/uploads/multimedia/1_abc.png", sent.File)
}
