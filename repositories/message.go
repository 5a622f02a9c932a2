//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"fmt"
	"time"

	"chatline/domain"
	"chatline/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	AppendMessage(chatID, senderID string, kind domain.MessageType, content, fileURL string) (domain.Message, error)
	ListMessages(chatID string) ([]domain.Message, error)
}

type MessageRepository struct {
	db *badger.DB
}

func NewMessageRepository(db *badger.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

type storedMessage struct {
	ID       string
	ChatID   string
	SenderID string
	Type     string
	Content  string
	File     string
	// CreatedAt doubles as UpdatedAt: messages are immutable.
	CreatedAt int64
}

// messageKey is formatted as "msg:{chat_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order equals time order within a chat).
//  2. Prevent data loss by using the UUID as a collision disconnector if two
//     messages arrive at the same nanosecond.
func messageKey(chatID string, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", chatID, at.UnixNano(), id))
}

// Every append rewrites the parent chat record, so concurrent sends to the
// same chat collide under badger's conflict detection. The loser retries
// with the same key and record until it commits; the bound only guards
// against a pathological livelock.
const appendRetryLimit = 100

// AppendMessage persists a message and updates the parent chat's last-message
// pointer and updatedAt in the same transaction, so the chat list ordering
// can never observe one without the other. Concurrent appends to one chat are
// sequenced by commit order, last committed wins the pointer. NotFoundError
// when the chat does not exist.
func (m *MessageRepository) AppendMessage(chatID, senderID string, kind domain.MessageType, content, fileURL string) (domain.Message, error) {
	now := time.Now().UTC()
	id := uuid.New()
	draft := domain.Message{
		ID:      id,
		ChatID:  chatID,
		Type:    kind,
		Content: content,
		File:    fileURL,
	}
	if err := draft.Validate(); err != nil {
		return domain.Message{}, err
	}

	record := storedMessage{
		ID:        id.String(),
		ChatID:    chatID,
		SenderID:  senderID,
		Type:      string(kind),
		Content:   content,
		File:      fileURL,
		CreatedAt: now.UnixNano(),
	}
	data, err := cbor.Marshal(record)
	if err != nil {
		return domain.Message{}, err
	}
	key := messageKey(chatID, now, id)

	var message domain.Message
	for attempt := 0; attempt < appendRetryLimit; attempt++ {
		err = m.db.Update(func(txn *badger.Txn) error {
			chat, err := loadStoredChat(txn, chatID)
			if err != nil {
				return err
			}
			if err := txn.Set(key, data); err != nil {
				return err
			}

			chat.LastMessageKey = string(key)
			chat.UpdatedAt = record.CreatedAt
			chatData, err := cbor.Marshal(chat)
			if err != nil {
				return err
			}
			if err := txn.Set(chatKey(chat.ID), chatData); err != nil {
				return err
			}

			message, err = resolveMessage(txn, record)
			return err
		})
		if err != badger.ErrConflict {
			break
		}
	}
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

// ListMessages returns the full history of a chat in chronological order
// (oldest first), senders resolved. The padded timestamp inside the key makes
// a forward prefix scan come back already sorted.
func (m *MessageRepository) ListMessages(chatID string) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		if _, err := loadStoredChat(txn, chatID); err != nil {
			return err
		}

		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		senders := map[string]domain.PublicUser{}
		prefix := []byte("msg:" + chatID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record storedMessage
			if err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			message, err := resolveMessageCached(txn, record, senders)
			if err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func loadMessageByKey(txn *badger.Txn, key []byte) (domain.Message, error) {
	item, err := txn.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return domain.Message{}, errors.NewNotFound("message", string(key))
		}
		return domain.Message{}, err
	}
	var record storedMessage
	if err := item.Value(func(val []byte) error {
		return cbor.Unmarshal(val, &record)
	}); err != nil {
		return domain.Message{}, err
	}
	return resolveMessage(txn, record)
}

func resolveMessage(txn *badger.Txn, record storedMessage) (domain.Message, error) {
	return resolveMessageCached(txn, record, map[string]domain.PublicUser{})
}

// resolveMessageCached converts a stored record, resolving the sender through
// a per-scan cache so long histories do not re-read the same user record.
func resolveMessageCached(txn *badger.Txn, record storedMessage, senders map[string]domain.PublicUser) (domain.Message, error) {
	sender, ok := senders[record.SenderID]
	if !ok {
		stored, err := loadStoredUser(txn, record.SenderID)
		if err != nil && !errors.IsNotFound(err) {
			return domain.Message{}, err
		}
		if err == nil {
			sender = toUser(stored).Public()
		}
		senders[record.SenderID] = sender
	}

	id, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Message{}, err
	}
	at := time.Unix(0, record.CreatedAt).UTC()
	return domain.Message{
		ID:        id,
		ChatID:    record.ChatID,
		Sender:    sender,
		Type:      domain.MessageType(record.Type),
		Content:   record.Content,
		File:      record.File,
		CreatedAt: at,
		UpdatedAt: at,
	}, nil
}
