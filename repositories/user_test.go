package repositories

import (
	"testing"

	"chatline/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Create_And_Get_User(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	created, err := repository.CreateUser("Alice", "a@x.com", "$argon2id$hash")
	req.NoError(err)
	req.NotEmpty(created.ID)

	byID, err := repository.GetUserByID(created.ID)
	req.NoError(err)
	req.Equal(created, byID)

	byEmail, err := repository.GetUserByEmail("a@x.com")
	req.NoError(err)
	req.Equal(created.ID, byEmail.ID)

	// The credential is stored but stripped from the public view
	req.Equal("$argon2id$hash", byID.PasswordHash)
	public := byID.Public()
	req.Equal(created.ID, public.ID)
	req.Equal("Alice", public.Name)
	req.Equal("a@x.com", public.Email)
}

func Test_Create_User_Duplicate_Email(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.CreateUser("Alice", "a@x.com", "h1")
	req.NoError(err)

	_, err = repository.CreateUser("Imposter", "a@x.com", "h2")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_Get_Unknown_User(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.GetUserByID("missing")
	req.True(errors.IsNotFound(err))

	_, err = repository.GetUserByEmail("nobody@x.com")
	req.True(errors.IsNotFound(err))
}

func Test_List_Users(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := repository.CreateUser("User", email, "h")
		req.NoError(err)
	}

	users, err := repository.ListUsers()
	req.NoError(err)
	req.Len(users, 3)
}

func Test_Update_User_Moves_Email_Index(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	created, err := repository.CreateUser("Alice", "a@x.com", "h")
	req.NoError(err)

	updated, err := repository.UpdateUser(created.ID, "Alicia", "alicia@x.com")
	req.NoError(err)
	req.Equal("Alicia", updated.Name)
	req.Equal("alicia@x.com", updated.Email)

	_, err = repository.GetUserByEmail("a@x.com")
	req.True(errors.IsNotFound(err))

	byEmail, err := repository.GetUserByEmail("alicia@x.com")
	req.NoError(err)
	req.Equal(created.ID, byEmail.ID)
}

func Test_Update_User_Rejects_Taken_Email(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.CreateUser("Alice", "a@x.com", "h")
	req.NoError(err)
	bob, err := repository.CreateUser("Bob", "b@x.com", "h")
	req.NoError(err)

	_, err = repository.UpdateUser(bob.ID, "", "a@x.com")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}
