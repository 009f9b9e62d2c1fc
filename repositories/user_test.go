package repositories

import (
	"private-chat/errors"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openInMemory(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUserRepository_Create_And_Get(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openInMemory(t))

	// When an account is created
	created, err := repository.CreateUser("ian", "hash")
	req.NoError(err)
	req.NotEmpty(created.ID)

	// Then it can be read back
	user, err := repository.GetUser("ian")
	req.NoError(err)
	req.Equal(created.ID, user.ID)
	req.Equal("ian", user.Username)
	req.Equal("hash", user.PasswordHash)
	req.True(created.CreatedAt.Equal(user.CreatedAt))
}

func TestUserRepository_Duplicate(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openInMemory(t))

	_, err := repository.CreateUser("ian", "hash")
	req.NoError(err)

	_, err = repository.CreateUser("ian", "other")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)

	// The first hash is kept
	user, err := repository.GetUser("ian")
	req.NoError(err)
	req.Equal("hash", user.PasswordHash)
}

func TestUserRepository_Unknown_User(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openInMemory(t))

	_, err := repository.GetUser("nobody")
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func TestUserRepository_ListUsers(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openInMemory(t))
	for _, name := range []string{"dan", "chris", "ian"} {
		_, err := repository.CreateUser(name, "hash")
		req.NoError(err)
	}

	users, err := repository.ListUsers()
	req.NoError(err)
	req.Len(users, 3)
	req.Equal("chris", users[0].Username)
	req.Equal("dan", users[1].Username)
	req.Equal("ian", users[2].Username)
}
