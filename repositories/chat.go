//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"sort"
	"strings"
	"time"

	"chatline/domain"
	"chatline/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IChatRepository interface {
	CreateChat(chat domain.Chat) (domain.Chat, error)
	FindChatByID(id string) (domain.Chat, error)
	FindChatsForUser(userID string) ([]domain.Chat, error)
	FindDirectChat(userA, userB string) (domain.Chat, error)
}

type ChatRepository struct {
	db *badger.DB
}

func NewChatRepository(db *badger.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

type storedChat struct {
	ID          string
	IsGroupChat bool
	Name        string
	Users       []string
	// LastMessageKey is the full badger key of the latest message, set by
	// the message repository on every append. Empty until the first send.
	LastMessageKey string
	CreatedAt      int64
	UpdatedAt      int64
}

func chatKey(id string) []byte { return []byte("chat:" + id) }

func memberKey(userID, chatID string) []byte {
	return []byte("chatmember:" + userID + ":" + chatID)
}

// pairKey orders the two user ids so both call orders hit the same entry.
// It is the uniqueness index for direct chats.
func pairKey(userA, userB string) []byte {
	a, b := userA, userB
	if b < a {
		a, b = b, a
	}
	return []byte("chatpair:" + a + ":" + b)
}

// CreateChat persists the chat, its member index entries, and (for direct
// chats) the pair index entry in one transaction. Two concurrent creates for
// the same pair both read the pair key; badger's conflict detection fails the
// second commit, which surfaces as ErrChatAlreadyExists so the caller can
// retry as a lookup.
func (c *ChatRepository) CreateChat(chat domain.Chat) (domain.Chat, error) {
	now := time.Now().UTC()
	record := storedChat{
		ID:          uuid.NewString(),
		IsGroupChat: chat.IsGroupChat,
		Name:        chat.Name,
		Users:       chat.UserIDs,
		CreatedAt:   now.UnixNano(),
		UpdatedAt:   now.UnixNano(),
	}
	data, err := cbor.Marshal(record)
	if err != nil {
		return domain.Chat{}, err
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		if !record.IsGroupChat {
			key := pairKey(record.Users[0], record.Users[1])
			_, err := txn.Get(key)
			if err == nil {
				return errors.ErrChatAlreadyExists
			}
			if err != badger.ErrKeyNotFound {
				return err
			}
			if err := txn.Set(key, []byte(record.ID)); err != nil {
				return err
			}
		}
		for _, userID := range record.Users {
			if err := txn.Set(memberKey(userID, record.ID), nil); err != nil {
				return err
			}
		}
		return txn.Set(chatKey(record.ID), data)
	})
	if err == badger.ErrConflict {
		return domain.Chat{}, errors.ErrChatAlreadyExists
	}
	if err != nil {
		return domain.Chat{}, err
	}
	return c.FindChatByID(record.ID)
}

// FindChatByID returns the chat with members and last message resolved.
func (c *ChatRepository) FindChatByID(id string) (domain.Chat, error) {
	var chat domain.Chat
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		chat, err = resolveChat(txn, id)
		return err
	})
	return chat, err
}

// FindChatsForUser scans the member index and returns the user's chats,
// most recently active first.
func (c *ChatRepository) FindChatsForUser(userID string) ([]domain.Chat, error) {
	var chats []domain.Chat
	err := c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()

		prefixStr := "chatmember:" + userID + ":"
		prefix := []byte(prefixStr)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			chatID := strings.TrimPrefix(string(it.Item().Key()), prefixStr)
			chat, err := resolveChat(txn, chatID)
			if err != nil {
				return err
			}
			chats = append(chats, chat)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
	return chats, nil
}

// FindDirectChat looks up the unique non-group chat for an unordered user
// pair via the pair index. NotFoundError when the pair never chatted.
func (c *ChatRepository) FindDirectChat(userA, userB string) (domain.Chat, error) {
	var chat domain.Chat
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pairKey(userA, userB))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.NewNotFound("chat", userA+"/"+userB)
			}
			return err
		}
		var chatID string
		if err := item.Value(func(val []byte) error {
			chatID = string(val)
			return nil
		}); err != nil {
			return err
		}
		chat, err = resolveChat(txn, chatID)
		return err
	})
	return chat, err
}

func loadStoredChat(txn *badger.Txn, id string) (storedChat, error) {
	item, err := txn.Get(chatKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return storedChat{}, errors.NewNotFound("chat", id)
		}
		return storedChat{}, err
	}
	var record storedChat
	err = item.Value(func(val []byte) error {
		return cbor.Unmarshal(val, &record)
	})
	return record, err
}

// resolveChat loads a chat record and resolves member users (hash stripped)
// and the last message within the same transaction.
func resolveChat(txn *badger.Txn, id string) (domain.Chat, error) {
	record, err := loadStoredChat(txn, id)
	if err != nil {
		return domain.Chat{}, err
	}

	users := make([]domain.PublicUser, 0, len(record.Users))
	for _, userID := range record.Users {
		stored, err := loadStoredUser(txn, userID)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return domain.Chat{}, err
		}
		users = append(users, toUser(stored).Public())
	}

	chat := domain.Chat{
		ID:          record.ID,
		IsGroupChat: record.IsGroupChat,
		Name:        record.Name,
		UserIDs:     record.Users,
		Users:       users,
		CreatedAt:   time.Unix(0, record.CreatedAt).UTC(),
		UpdatedAt:   time.Unix(0, record.UpdatedAt).UTC(),
	}

	if record.LastMessageKey != "" {
		message, err := loadMessageByKey(txn, []byte(record.LastMessageKey))
		if err != nil && !errors.IsNotFound(err) {
			return domain.Chat{}, err
		}
		if err == nil {
			chat.LastMessage = lo.ToPtr(message)
		}
	}
	return chat, nil
}
