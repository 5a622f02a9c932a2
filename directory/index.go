//go:generate go run go.uber.org/mock/mockgen -source=index.go -destination=../mocks/mock_user_index.go -package=mocks

// Package directory maintains the searchable user index. Lookup by id or
// email stays in the badger repository; this index only answers the
// case-insensitive substring search over names and emails.
package directory

import (
	"context"
	"log/slog"
	"strings"

	"chatline/domain"

	"github.com/blugelabs/bluge"
)

type IUserIndex interface {
	Index(user domain.PublicUser) error
	Search(ctx context.Context, query string, limit int) ([]string, error)
	Close() error
}

type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewIndex(path string, log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	return &Index{writer: writer, log: log}, nil
}

// Index adds or replaces the user's entry. Values are lowercased at index
// time; Search lowercases the query, which together make matching
// case-insensitive.
func (i *Index) Index(user domain.PublicUser) error {
	doc := bluge.NewDocument(user.ID).
		AddField(bluge.NewKeywordField("name", strings.ToLower(user.Name)).StoreValue()).
		AddField(bluge.NewKeywordField("email", strings.ToLower(user.Email)).StoreValue())
	return i.writer.Update(doc.ID(), doc)
}

// Search returns the ids of users whose name or email contains the query as
// a substring, at most limit of them.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]string, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Warn("closing index reader failed", "error", err)
		}
	}()

	pattern := "*" + strings.ToLower(strings.TrimSpace(query)) + "*"
	match := bluge.NewBooleanQuery().
		AddShould(bluge.NewWildcardQuery(pattern).SetField("name")).
		AddShould(bluge.NewWildcardQuery(pattern).SetField("email")).
		SetMinShould(1)

	iter, err := reader.Search(ctx, bluge.NewTopNSearch(limit, match))
	if err != nil {
		return nil, err
	}

	var ids []string
	for {
		next, err := iter.Next()
		if err != nil {
			return nil, err
		}
		if next == nil {
			break
		}
		err = next.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				ids = append(ids, string(value))
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}
