package directory

import (
	"context"
	"log/slog"
	"testing"

	"chatline/domain"

	"github.com/stretchr/testify/require"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	index, err := NewIndex(t.TempDir(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func Test_Search_Substring_Case_Insensitive(t *testing.T) {
	req := require.New(t)
	index := openTestIndex(t)

	req.NoError(index.Index(domain.PublicUser{ID: "u1", Name: "Alice Cooper", Email: "alice@x.com"}))
	req.NoError(index.Index(domain.PublicUser{ID: "u2", Name: "Bob", Email: "bob@x.com"}))
	req.NoError(index.Index(domain.PublicUser{ID: "u3", Name: "Malice", Email: "m@y.org"}))

	ctx := context.Background()

	// Substring of the name, different case
	ids, err := index.Search(ctx, "ALIC", 10)
	req.NoError(err)
	req.ElementsMatch([]string{"u1", "u3"}, ids)

	// Substring of the email only
	ids, err = index.Search(ctx, "y.org", 10)
	req.NoError(err)
	req.Equal([]string{"u3"}, ids)

	ids, err = index.Search(ctx, "nobody", 10)
	req.NoError(err)
	req.Empty(ids)
}

func Test_Search_Respects_Limit(t *testing.T) {
	req := require.New(t)
	index := openTestIndex(t)

	req.NoError(index.Index(domain.PublicUser{ID: "u1", Name: "Sam", Email: "sam@x.com"}))
	req.NoError(index.Index(domain.PublicUser{ID: "u2", Name: "Samuel", Email: "samuel@x.com"}))

	ids, err := index.Search(context.Background(), "sam", 1)
	req.NoError(err)
	req.Len(ids, 1)
}

func Test_Index_Replaces_Existing_Entry(t *testing.T) {
	req := require.New(t)
	index := openTestIndex(t)

	req.NoError(index.Index(domain.PublicUser{ID: "u1", Name: "Alice", Email: "alice@x.com"}))
	req.NoError(index.Index(domain.PublicUser{ID: "u1", Name: "Alicia", Email: "alicia@x.com"}))

	ids, err := index.Search(context.Background(), "alicia", 10)
	req.NoError(err)
	req.Equal([]string{"u1"}, ids)

	// The old name no longer matches on its own
	ids, err = index.Search(context.Background(), "alice@", 10)
	req.NoError(err)
	req.Empty(ids)
}
